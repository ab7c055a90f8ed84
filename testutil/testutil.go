// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/models"
)

// TestAdminPassword is the admin password accepted by GetTestConfig
const TestAdminPassword = "test-admin-password"

var adminHash = sync.OnceValue(func() string {
	hash, err := auth.HashPassword(TestAdminPassword)
	if err != nil {
		panic(err)
	}
	return hash
})

// SetupTestDB creates a fresh SQLite database with the full schema.
// The file lives in the test's temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a Store
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       "file::memory:",
		DatabaseType:      db.TypeSQLite,
		SessionSecret:     "test-session-secret",
		AdminPasswordHash: adminHash(),
		MasterKey:         auth.DefaultMasterKey,
		SessionTTL:        time.Hour,
	}
}

// CreateTestJury inserts a jury with the given flags
func CreateTestJury(t *testing.T, store *db.Store, name string, submitted, paused bool) models.Jury {
	t.Helper()

	id, err := store.CreateJury(context.Background(), name)
	if err != nil {
		t.Fatalf("Failed to create test jury: %v", err)
	}
	_, err = store.DB().Exec(`
		UPDATE jury SET has_submitted = $1, paused = $2 WHERE id = $3
	`, submitted, paused, id)
	if err != nil {
		t.Fatalf("Failed to set test jury flags: %v", err)
	}

	return models.Jury{ID: id, Name: name, HasSubmitted: submitted, Paused: paused}
}

// CreateTestTeam inserts a team and returns it
func CreateTestTeam(t *testing.T, store *db.Store, name string) models.Team {
	t.Helper()

	id, err := store.CreateTeam(context.Background(), name, "")
	if err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}
	return models.Team{ID: id, Name: name}
}

// AddTestCriteria appends criteria labels as given
func AddTestCriteria(t *testing.T, store *db.Store, labels ...string) {
	t.Helper()

	for _, label := range labels {
		if err := store.AddCriterion(context.Background(), label); err != nil {
			t.Fatalf("Failed to add test criterion: %v", err)
		}
	}
}

// AddTestMark records a score directly, bypassing the submitted check
func AddTestMark(t *testing.T, store *db.Store, juryID, teamID, criterion string, score float64) {
	t.Helper()

	_, err := store.DB().Exec(`
		INSERT INTO mark (jury_id, team_id, criterion, score)
		VALUES ($1, $2, $3, $4)
	`, juryID, teamID, criterion, score)
	if err != nil {
		t.Fatalf("Failed to create test mark: %v", err)
	}
}

// AdminToken issues an admin session token
func AdminToken(t *testing.T, cfg cliparse.Config) string {
	t.Helper()
	return issue(t, cfg, models.ScopeAdmin, models.ScopeAdmin)
}

// JuryToken issues a jury session token for juryID
func JuryToken(t *testing.T, cfg cliparse.Config, juryID string) string {
	t.Helper()
	return issue(t, cfg, models.ScopeJury, juryID)
}

func issue(t *testing.T, cfg cliparse.Config, scope, subject string) string {
	t.Helper()
	token, _, err := auth.IssueSession(cfg.SessionSecret, scope, subject, cfg.SessionTTL)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return token
}

// Bearer returns the Authorization header for a token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form POST
func MakeFormRequest(path string, form url.Values, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// WithURLParams attaches chi route parameters so handlers can be called directly
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithSession puts a verified session in the request context, as the
// session middleware would
func WithSession(t *testing.T, req *http.Request, cfg cliparse.Config, token string) *http.Request {
	t.Helper()
	sess, err := auth.ParseSession(cfg.SessionSecret, token)
	if err != nil {
		t.Fatalf("Failed to parse session: %v", err)
	}
	return req.WithContext(auth.WithSession(req.Context(), sess))
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
