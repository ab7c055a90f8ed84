// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/testutil"
	"github.com/danielhkuo/markboard/views"
)

func setupPages(t *testing.T) (*PageHandler, *db.Store, cliparse.Config) {
	t.Helper()
	renderer, err := views.NewRenderer()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	return NewPageHandler(store, cfg, renderer), store, cfg
}

func assertBody(t *testing.T, w *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range want {
		if !strings.Contains(body, s) {
			t.Errorf("Expected body to contain %q", s)
		}
	}
}

func TestLandingPage(t *testing.T) {
	h, store, _ := setupPages(t)

	w := httptest.NewRecorder()
	h.Landing(w, httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, "No Juries Available", `href="/admin/login"`)

	jury := testutil.CreateTestJury(t, store, "Panel A", false, false)
	testutil.CreateTestJury(t, store, "Panel B", true, false)

	w = httptest.NewRecorder()
	h.Landing(w, httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, "Panel A", "Panel B", "Quick Statistics")
	if strings.Contains(w.Body.String(), `id="jury-gate"`) {
		t.Error("Expected gate to be closed without ?jury")
	}

	w = httptest.NewRecorder()
	h.Landing(w, httptest.NewRequest("GET", "/?jury="+jury.ID, nil))
	assertBody(t, w, `id="jury-gate"`, "Access Panel A", `value="`+jury.ID+`"`)
}

func TestPageAccess(t *testing.T) {
	h, store, cfg := setupPages(t)
	jury := testutil.CreateTestJury(t, store, "Panel A", false, false)

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"jury name", " panel a ", true},
		{"master key", "cdd123", true},
		{"wrong password", "panel b", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Access(w, testutil.MakeFormRequest("/access", url.Values{
				"jury":     {jury.ID},
				"password": {tt.password},
			}, nil))

			if !tt.ok {
				testutil.AssertStatus(t, w, http.StatusUnauthorized)
				assertBody(t, w, `id="jury-gate"`, views.MsgIncorrectPassword)
				if w.Header().Get("Set-Cookie") != "" {
					t.Error("Expected no session cookie on failure")
				}
				return
			}

			testutil.AssertStatus(t, w, http.StatusSeeOther)
			if loc := w.Header().Get("Location"); loc != "/jury/Panel%20A" {
				t.Errorf("Expected redirect to /jury/Panel%%20A, got %q", loc)
			}

			var token string
			for _, c := range w.Result().Cookies() {
				if c.Name == middleware.JuryCookie {
					token = c.Value
				}
			}
			sess, err := auth.ParseSession(cfg.SessionSecret, token)
			if err != nil {
				t.Fatalf("Expected a valid jury session cookie: %v", err)
			}
			if sess.Scope != models.ScopeJury || sess.Subject != jury.ID {
				t.Errorf("Unexpected session %+v", sess)
			}
		})
	}

	t.Run("unknown jury", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Access(w, testutil.MakeFormRequest("/access", url.Values{"jury": {"missing"}, "password": {"CDD123"}}, nil))
		testutil.AssertStatus(t, w, http.StatusSeeOther)
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Errorf("Expected redirect to /, got %q", loc)
		}
	})
}

func juryPageRequest(t *testing.T, cfg cliparse.Config, jury models.Jury, path string, form url.Values) *http.Request {
	t.Helper()
	var req *http.Request
	if form == nil {
		req = httptest.NewRequest("GET", path, nil)
	} else {
		req = testutil.MakeFormRequest(path, form, nil)
	}
	req = testutil.WithURLParams(req, map[string]string{"juryName": jury.Name})
	return testutil.WithSession(t, req, cfg, testutil.JuryToken(t, cfg, jury.ID))
}

func TestJuryPage(t *testing.T) {
	h, store, cfg := setupPages(t)
	jury := testutil.CreateTestJury(t, store, "Panel A", false, false)
	other := testutil.CreateTestJury(t, store, "Panel B", false, false)
	team := testutil.CreateTestTeam(t, store, "Rockets")
	testutil.AddTestCriteria(t, store, "DESIGN", "IMPACT")

	w := httptest.NewRecorder()
	h.Jury(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, "Rockets", "DESIGN", "IMPACT", views.ScoreField(team.ID, 1), "Submit Final Marks")

	t.Run("another jury's session is sent home", func(t *testing.T) {
		req := testutil.WithURLParams(httptest.NewRequest("GET", "/jury/Panel%20A", nil), map[string]string{"juryName": jury.Name})
		req = testutil.WithSession(t, req, cfg, testutil.JuryToken(t, cfg, other.ID))
		w := httptest.NewRecorder()
		h.Jury(w, req)
		testutil.AssertStatus(t, w, http.StatusSeeOther)
	})

	t.Run("save marks", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.JuryMarks(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/marks", url.Values{
			views.ScoreField(team.ID, 0): {"7.5"},
			views.ScoreField(team.ID, 1): {""},
		}))
		testutil.AssertStatus(t, w, http.StatusOK)
		assertBody(t, w, "Marks saved", `value="7.5"`)

		marks, err := store.ListMarks(context.Background(), jury.ID)
		if err != nil {
			t.Fatalf("Failed to list marks: %v", err)
		}
		if len(marks) != 1 || marks[0].Criterion != "DESIGN" || marks[0].Score != 7.5 {
			t.Errorf("Unexpected marks %+v", marks)
		}
	})

	t.Run("invalid marks", func(t *testing.T) {
		for _, value := range []string{"eleven", "11", "-1"} {
			w := httptest.NewRecorder()
			h.JuryMarks(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/marks", url.Values{
				views.ScoreField(team.ID, 0): {value},
			}))
			testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
		}

		w := httptest.NewRecorder()
		h.JuryMarks(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/marks", url.Values{}))
		testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
		assertBody(t, w, "No marks entered")
	})

	t.Run("pause resume submit", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.JuryPause(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/pause", url.Values{}))
		testutil.AssertStatus(t, w, http.StatusOK)
		assertBody(t, w, "Marking paused", "Resume")

		w = httptest.NewRecorder()
		h.JuryResume(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/resume", url.Values{}))
		testutil.AssertStatus(t, w, http.StatusOK)
		assertBody(t, w, "Marking resumed")

		w = httptest.NewRecorder()
		h.JurySubmit(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/submit", url.Values{}))
		testutil.AssertStatus(t, w, http.StatusOK)
		assertBody(t, w, "Marks submitted", "Your marks have been submitted")

		w = httptest.NewRecorder()
		h.JuryMarks(w, juryPageRequest(t, cfg, jury, "/jury/Panel%20A/marks", url.Values{
			views.ScoreField(team.ID, 0): {"3"},
		}))
		testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)
		assertBody(t, w, "Marks already submitted")
	})
}

func TestAdminLoginPage(t *testing.T) {
	h, _, cfg := setupPages(t)

	w := httptest.NewRecorder()
	h.AdminLogin(w, testutil.MakeFormRequest("/admin/login", url.Values{"password": {"nope"}}, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	assertBody(t, w, "Invalid password")

	w = httptest.NewRecorder()
	h.AdminLogin(w, testutil.MakeFormRequest("/admin/login", url.Values{"password": {testutil.TestAdminPassword}}, nil))
	testutil.AssertStatus(t, w, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Expected redirect to /admin, got %q", loc)
	}

	// Already signed in
	req := httptest.NewRequest("GET", "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookie, Value: testutil.AdminToken(t, cfg)})
	w = httptest.NewRecorder()
	h.AdminLoginForm(w, req)
	testutil.AssertStatus(t, w, http.StatusSeeOther)
}

func adminPageRequest(t *testing.T, cfg cliparse.Config, method, path string, form url.Values, params map[string]string) *http.Request {
	t.Helper()
	var req *http.Request
	if method == http.MethodGet {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = testutil.MakeFormRequest(path, form, nil)
	}
	if params != nil {
		req = testutil.WithURLParams(req, params)
	}
	return testutil.WithSession(t, req, cfg, testutil.AdminToken(t, cfg))
}

func TestAdminPage(t *testing.T) {
	h, store, cfg := setupPages(t)
	testutil.CreateTestJury(t, store, "Panel A", true, false)
	testutil.CreateTestJury(t, store, "Panel B", false, false)
	testutil.CreateTestTeam(t, store, "Rockets")

	tests := []struct {
		tab  string
		want string
	}{
		{"", "System Overview"},
		{"dashboard", "System Overview"},
		{"juries", "<h2>Juries</h2>"},
		{"teams", "<h2>Teams</h2>"},
		{"criteria", "Criteria List"},
		{"config", "<h2>Configuration</h2>"},
		{"exports", "Download Leaderboard Excel"},
		{"bogus", "System Overview"},
	}

	for _, tt := range tests {
		t.Run("tab "+tt.tab, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Admin(w, adminPageRequest(t, cfg, "GET", "/admin?tab="+tt.tab, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)
			assertBody(t, w, tt.want)
			if n := strings.Count(w.Body.String(), `class="card tab-body"`); n != 1 {
				t.Errorf("Expected exactly one tab body, got %d", n)
			}
		})
	}

	t.Run("exports lists each jury", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Admin(w, adminPageRequest(t, cfg, "GET", "/admin?tab=exports", nil, nil))
		assertBody(t, w, "/api/export/juries/Panel%20A", "Panel B Report")
	})
}

func TestAdminCriteriaPage(t *testing.T) {
	h, store, cfg := setupPages(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	h.AdminAddCriterion(w, adminPageRequest(t, cfg, "POST", "/admin/criteria", url.Values{"value": {"  fairness  "}}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, "FAIRNESS", "Criteria List")

	w = httptest.NewRecorder()
	h.AdminAddCriterion(w, adminPageRequest(t, cfg, "POST", "/admin/criteria", url.Values{"value": {"   "}}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, views.MsgBlankInput)

	list, _ := store.ListCriteria(ctx)
	if len(list) != 1 || list[0] != "FAIRNESS" {
		t.Fatalf("Expected [FAIRNESS], got %v", list)
	}

	w = httptest.NewRecorder()
	h.AdminRemoveCriterion(w, adminPageRequest(t, cfg, "POST", "/admin/criteria/0/delete", url.Values{}, map[string]string{"index": "0"}))
	testutil.AssertStatus(t, w, http.StatusOK)

	list, _ = store.ListCriteria(ctx)
	if len(list) != 0 {
		t.Errorf("Expected criteria to be empty, got %v", list)
	}
}

func TestAdminResetPage(t *testing.T) {
	h, store, cfg := setupPages(t)
	ctx := context.Background()
	testutil.CreateTestJury(t, store, "Panel A", false, false)
	testutil.CreateTestTeam(t, store, "Rockets")

	w := httptest.NewRecorder()
	h.AdminResetConfirm(w, adminPageRequest(t, cfg, "GET", "/admin/reset?tab=teams", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, `id="reset-confirm"`, "Are you sure?", "This will permanently reset all data!")

	w = httptest.NewRecorder()
	h.AdminReset(w, adminPageRequest(t, cfg, "POST", "/admin/reset", url.Values{"tab": {"teams"}}, nil))
	testutil.AssertStatus(t, w, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/admin?tab=teams" {
		t.Errorf("Expected redirect back to the teams tab, got %q", loc)
	}
	if juries, _ := store.ListJuries(ctx); len(juries) != 1 {
		t.Fatalf("Expected data intact after cancelled reset, got %d juries", len(juries))
	}

	w = httptest.NewRecorder()
	h.AdminReset(w, adminPageRequest(t, cfg, "POST", "/admin/reset", url.Values{"tab": {"teams"}, "confirm": {"yes"}}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, views.MsgResetDone)

	juries, _ := store.ListJuries(ctx)
	teams, _ := store.ListTeams(ctx)
	if len(juries) != 0 || len(teams) != 0 {
		t.Errorf("Expected reset to clear juries and teams, got %d and %d", len(juries), len(teams))
	}
}

func TestAdminPanelMutations(t *testing.T) {
	h, store, cfg := setupPages(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	h.AdminCreateJury(w, adminPageRequest(t, cfg, "POST", "/admin/juries", url.Values{"name": {" Panel A "}}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assertBody(t, w, "Jury added", "Panel A")

	w = httptest.NewRecorder()
	h.AdminCreateJury(w, adminPageRequest(t, cfg, "POST", "/admin/juries", url.Values{"name": {"Panel A"}}, nil))
	assertBody(t, w, "Jury name already exists")

	w = httptest.NewRecorder()
	h.AdminCreateTeam(w, adminPageRequest(t, cfg, "POST", "/admin/teams", url.Values{"name": {"Rockets"}, "project": {"Lander"}}, nil))
	assertBody(t, w, "Team added", "Rockets")

	w = httptest.NewRecorder()
	h.AdminSetConfig(w, adminPageRequest(t, cfg, "POST", "/admin/config", url.Values{"key": {models.ConfigMaxScore}, "value": {"20"}}, nil))
	assertBody(t, w, "Configuration saved")

	juries, _ := store.ListJuries(ctx)
	teams, _ := store.ListTeams(ctx)
	config, _ := store.GetConfig(ctx)
	if len(juries) != 1 || len(teams) != 1 || config[models.ConfigMaxScore] != "20" {
		t.Fatalf("Unexpected state: juries=%v teams=%v config=%v", juries, teams, config)
	}

	w = httptest.NewRecorder()
	h.AdminDeleteJury(w, adminPageRequest(t, cfg, "POST", "/", url.Values{}, map[string]string{"id": juries[0].ID}))
	assertBody(t, w, "Jury deleted")

	w = httptest.NewRecorder()
	h.AdminDeleteTeam(w, adminPageRequest(t, cfg, "POST", "/", url.Values{}, map[string]string{"id": "missing"}))
	assertBody(t, w, "Failed to delete team: not found")
}

func TestRenderFailure(t *testing.T) {
	h, _, _ := setupPages(t)

	tests := []struct {
		name string
		page string
		data any
	}{
		{"data missing fields", views.PageLanding, struct{}{}},
		{"unknown page", "missing.html", views.LandingPage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.render(w, http.StatusOK, tt.page, tt.data)
			testutil.AssertStatus(t, w, http.StatusInternalServerError)
			if strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
				t.Error("Expected no partial page in the error response")
			}
			if ct := w.Header().Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
				t.Errorf("Expected a plain error response, got %q", ct)
			}
		})
	}
}

func TestJuryPage_EscapedName(t *testing.T) {
	h, store, cfg := setupPages(t)
	testutil.CreateTestTeam(t, store, "Rockets")

	tests := []struct {
		name  string
		jury  string
		path  string
		param string
	}{
		// chi matches on RawPath here and leaves %2F in the parameter
		{"slash", "Panel/A", "/jury/Panel%2FA", "Panel%2FA"},
		// no RawPath, so the parameter arrives decoded
		{"percent", "50%41", "/jury/50%2541", "50%41"},
		{"space", "Panel A", "/jury/Panel%20A", "Panel A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jury := testutil.CreateTestJury(t, store, tt.jury, false, false)
			if got := views.JuryPath(tt.jury); got != tt.path {
				t.Fatalf("Expected jury path %q, got %q", tt.path, got)
			}

			req := testutil.WithURLParams(httptest.NewRequest("GET", tt.path, nil), map[string]string{"juryName": tt.param})
			req = testutil.WithSession(t, req, cfg, testutil.JuryToken(t, cfg, jury.ID))
			w := httptest.NewRecorder()
			h.Jury(w, req)
			testutil.AssertStatus(t, w, http.StatusOK)
			assertBody(t, w, "Rockets")
		})
	}
}
