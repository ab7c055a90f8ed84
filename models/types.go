package models

import "time"

// Session scopes
const (
	ScopeAdmin = "admin"
	ScopeJury  = "jury"
)

// Config keys with special meaning
const (
	ConfigMaxScore    = "max_score"
	ConfigLastResetAt = "last_reset_at"
)

// DefaultMaxScore applies when max_score is unset or unparseable.
const DefaultMaxScore = 10.0

// Request types

type LoginRequest struct {
	Password string `json:"password"`
}

type JuryAccessRequest struct {
	Password string `json:"password"`
}

type CreateJuryRequest struct {
	Name string `json:"name"`
}

type CreateTeamRequest struct {
	Name    string `json:"name"`
	Project string `json:"project"`
}

type AddCriterionRequest struct {
	Value string `json:"value"`
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

type SaveMarksRequest struct {
	Marks []Mark `json:"marks"`
}

// Response types

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type JuryAccessResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Redirect  string    `json:"redirect"`
}

type MeResponse struct {
	Scope     string    `json:"scope"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DashboardResponse struct {
	Stats       DashboardStats `json:"stats"`
	Juries      []Jury         `json:"juries"`
	Teams       []Team         `json:"teams"`
	Config      Config         `json:"config"`
	LastReset   string         `json:"last_reset,omitempty"`
	Conflicting []string       `json:"conflicting_juries,omitempty"`
}

// Domain types

type Jury struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	HasSubmitted bool   `json:"hasSubmitted"`
	Paused       bool   `json:"paused"`
}

type Team struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Project string `json:"project,omitempty"`
}

// Config is an opaque key-value bag owned by the admin.
type Config map[string]string

type Mark struct {
	TeamID    string  `json:"team_id"`
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
}

type DashboardStats struct {
	TotalJuries    int `json:"totalJuries"`
	TotalTeams     int `json:"totalTeams"`
	Submitted      int `json:"submitted"`
	Paused         int `json:"paused"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	TeamID   string  `json:"team_id"`
	TeamName string  `json:"team_name"`
	Total    float64 `json:"total"`
	Juries   int     `json:"juries"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
