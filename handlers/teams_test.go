// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/testutil"
)

func TestTeams(t *testing.T) {
	store := testutil.SetupTestStore(t)
	handler := NewTeamHandler(store, testutil.GetTestConfig())

	create := func(req models.CreateTeamRequest) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.Create(w, testutil.MakeRequest("POST", "/api/teams", req, nil))
		return w
	}

	w := create(models.CreateTeamRequest{Name: " Rockets ", Project: " Lunar lander "})
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreatedResponse
	testutil.AssertJSON(t, w, &created)

	testutil.AssertStatus(t, create(models.CreateTeamRequest{Name: "Comets"}), http.StatusCreated)
	testutil.AssertStatus(t, create(models.CreateTeamRequest{Name: "Rockets"}), http.StatusConflict)
	testutil.AssertStatus(t, create(models.CreateTeamRequest{Name: ""}), http.StatusBadRequest)

	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/api/teams", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var teams []models.Team
	testutil.AssertJSON(t, w, &teams)
	if len(teams) != 2 || teams[0].Name != "Comets" || teams[1].Name != "Rockets" {
		t.Fatalf("Expected Comets and Rockets sorted by name, got %+v", teams)
	}
	if teams[1].Project != "Lunar lander" {
		t.Errorf("Expected trimmed project, got %q", teams[1].Project)
	}

	del := func(id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.Delete(w, testutil.WithURLParams(httptest.NewRequest("DELETE", "/", nil), map[string]string{"id": id}))
		return w
	}
	testutil.AssertStatus(t, del(created.ID), http.StatusNoContent)
	testutil.AssertStatus(t, del(created.ID), http.StatusNotFound)
}

func TestDeleteTeamRemovesMarks(t *testing.T) {
	store := testutil.SetupTestStore(t)
	handler := NewTeamHandler(store, testutil.GetTestConfig())

	jury := testutil.CreateTestJury(t, store, "Panel A", false, false)
	team := testutil.CreateTestTeam(t, store, "Rockets")
	testutil.AddTestCriteria(t, store, "DESIGN")
	testutil.AddTestMark(t, store, jury.ID, team.ID, "DESIGN", 4)

	w := httptest.NewRecorder()
	handler.Delete(w, testutil.WithURLParams(httptest.NewRequest("DELETE", "/", nil), map[string]string{"id": team.ID}))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	marks, err := store.ListMarks(context.Background(), jury.ID)
	if err != nil {
		t.Fatalf("Failed to list marks: %v", err)
	}
	if len(marks) != 0 {
		t.Errorf("Expected marks to be removed with the team, got %d", len(marks))
	}
}
