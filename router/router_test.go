// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/testutil"
	"github.com/danielhkuo/markboard/views"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mux, _ := newTestRouterWithStore(t)
	return mux
}

func newTestRouterWithStore(t *testing.T) (http.Handler, *db.Store) {
	t.Helper()
	renderer, err := views.NewRenderer()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	store := testutil.SetupTestStore(t)
	return NewRouter(store, testutil.GetTestConfig(), renderer), store
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestPublicRoutes(t *testing.T) {
	mux := newTestRouter(t)

	for _, path := range []string{"/", "/admin/login", "/api/juries", "/api/teams", "/api/criteria", "/api/leaderboard"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("Expected 200 for %s, got %d", path, w.Code)
			}
		})
	}
}

func TestAPIRequiresSession(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/dashboard"},
		{"GET", "/api/admin/me"},
		{"POST", "/api/juries"},
		{"DELETE", "/api/juries/some-id"},
		{"POST", "/api/teams"},
		{"PUT", "/api/config"},
		{"POST", "/api/config/reset"},
		{"POST", "/api/criteria"},
		{"DELETE", "/api/criteria/0"},
		{"GET", "/api/export/leaderboard"},
		{"GET", "/api/export/juries/Panel%20A"},
		{"GET", "/api/juries/Panel%20A/marks"},
		{"POST", "/api/juries/Panel%20A/submit"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAdminTokenOpensAdminRoutes(t *testing.T) {
	mux := newTestRouter(t)
	cfg := testutil.GetTestConfig()
	token := testutil.AdminToken(t, cfg)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/dashboard", nil, testutil.Bearer(token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// A jury session never opens admin routes
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/dashboard", nil, testutil.Bearer(testutil.JuryToken(t, cfg, "j1"))))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestPagesRedirectWithoutSession(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/admin"},
		{"GET", "/admin/reset"},
		{"POST", "/admin/criteria"},
		{"GET", "/jury/Panel%20A"},
		{"POST", "/jury/Panel%20A/marks"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
				t.Errorf("Expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
			}
		})
	}
}

func TestAdminPageWithCookie(t *testing.T) {
	mux := newTestRouter(t)
	token := testutil.AdminToken(t, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/admin?tab=criteria", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookie, Value: token})
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/health"},
		{"DELETE", "/api/leaderboard"},
	} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestJuryNamesSurviveRouting(t *testing.T) {
	mux, store := newTestRouterWithStore(t)
	testutil.CreateTestTeam(t, store, "Rockets")

	for _, name := range []string{"Panel/A", "50%41", "Panel A"} {
		t.Run(name, func(t *testing.T) {
			testutil.CreateTestJury(t, store, name, false, false)
			path := views.JuryPath(name)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/juries/"+url.PathEscape(name)+"/access",
				models.JuryAccessRequest{Password: name}, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.JuryAccessResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Redirect != path {
				t.Fatalf("Expected redirect %q, got %q", path, resp.Redirect)
			}

			req := httptest.NewRequest("GET", resp.Redirect, nil)
			for _, c := range w.Result().Cookies() {
				req.AddCookie(c)
			}
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			testutil.AssertStatus(t, w, http.StatusOK)
			if !strings.Contains(w.Body.String(), "Rockets") {
				t.Error("Expected the jury page to list teams")
			}
		})
	}
}
