// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/danielhkuo/markboard/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names
const (
	PageLanding    = "landing"
	PageAdmin      = "admin"
	PageAdminLogin = "admin_login"
	PageJury       = "jury"
)

var pages = []string{PageLanding, PageAdmin, PageAdminLogin, PageJury}

var funcs = template.FuncMap{
	"juryPath":   JuryPath,
	"pathEscape": url.PathEscape,
	"score": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}

// Developer is the profile shown in the footer modal.
type Developer struct {
	Name   string
	Role   string
	Branch string
	Year   string
}

var DefaultDeveloper = Developer{
	Name:   "Chhayakanta Dash",
	Role:   "Lead Developer",
	Branch: "Computer Science & Engineering",
	Year:   "4th Year",
}

// Footer is rendered at the bottom of every page. The profile modal is
// toggled with the profile query parameter.
type Footer struct {
	Developer   Developer
	ShowProfile bool
	OpenURL     string
	CloseURL    string
	Year        int
}

// NewFooter builds the footer for a request URL.
func NewFooter(u *url.URL) Footer {
	q := u.Query()
	show := q.Get("profile") == "1"

	q.Set("profile", "1")
	open := url.URL{Path: u.Path, RawQuery: q.Encode()}
	q.Del("profile")
	closed := url.URL{Path: u.Path, RawQuery: q.Encode()}

	return Footer{
		Developer:   DefaultDeveloper,
		ShowProfile: show,
		OpenURL:     open.String(),
		CloseURL:    closed.String(),
		Year:        time.Now().Year(),
	}
}

type LandingPage struct {
	Juries    []models.Jury
	Stats     models.DashboardStats
	Gate      Gate
	LoadError string
	Footer    Footer
}

type LoginPage struct {
	Error  string
	Footer Footer
}

type AdminPage struct {
	*AdminModel
	Tabs         []Tab
	ConfirmReset bool
	LastReset    string
	MaxScore     float64
	Footer       Footer
}

// JuryRow is one team line of the marking sheet.
type JuryRow struct {
	Team  models.Team
	Cells []JuryCell
}

// JuryCell is one score input. Field is the form field name.
type JuryCell struct {
	Criterion string
	Field     string
	Value     string
}

type JuryPage struct {
	Jury     models.Jury
	Criteria []string
	Rows     []JuryRow
	MaxScore float64
	Notice   Notice
	Footer   Footer
}

// ScoreField names the form field for a team and criterion position.
func ScoreField(teamID string, criterion int) string {
	return fmt.Sprintf("score-%s-%d", teamID, criterion)
}

// NewJuryPage lays marks out as one row per team and one cell per criterion.
func NewJuryPage(jury models.Jury, teams []models.Team, criteria []string, marks []models.Mark) JuryPage {
	type key struct{ team, criterion string }
	scores := make(map[key]float64, len(marks))
	for _, m := range marks {
		scores[key{m.TeamID, m.Criterion}] = m.Score
	}

	rows := make([]JuryRow, 0, len(teams))
	for _, t := range teams {
		row := JuryRow{Team: t, Cells: make([]JuryCell, len(criteria))}
		for i, c := range criteria {
			row.Cells[i] = JuryCell{Criterion: c, Field: ScoreField(t.ID, i)}
			if v, ok := scores[key{t.ID, c}]; ok {
				row.Cells[i].Value = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		rows = append(rows, row)
	}

	return JuryPage{Jury: jury, Criteria: criteria, Rows: rows}
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page into w. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
