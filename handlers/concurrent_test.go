// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/testutil"
)

// TestConcurrentMarkSaves verifies that juries saving at the same time
// each end up with exactly their own marks
func TestConcurrentMarkSaves(t *testing.T) {
	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewJuryHandler(store, cfg)

	team := testutil.CreateTestTeam(t, store, "Rockets")
	testutil.AddTestCriteria(t, store, "DESIGN", "IMPACT")

	numJuries := 8
	juries := make([]models.Jury, numJuries)
	for i := range juries {
		juries[i] = testutil.CreateTestJury(t, store, fmt.Sprintf("Panel %d", i), false, false)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i, jury := range juries {
		wg.Add(1)
		go func(i int, jury models.Jury) {
			defer wg.Done()

			body := models.SaveMarksRequest{Marks: []models.Mark{
				{TeamID: team.ID, Criterion: "DESIGN", Score: float64(i)},
				{TeamID: team.ID, Criterion: "IMPACT", Score: float64(i) / 2},
			}}
			req := testutil.MakeRequest("PUT", "/", body, nil)
			req = testutil.WithURLParams(req, map[string]string{"name": jury.Name})
			req = testutil.WithSession(t, req, cfg, testutil.JuryToken(t, cfg, jury.ID))
			w := httptest.NewRecorder()

			handler.SaveMarks(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i, jury)
	}

	wg.Wait()

	if int(successCount.Load()) != numJuries {
		t.Errorf("Expected %d successful saves, got %d", numJuries, successCount.Load())
	}

	for i, jury := range juries {
		marks, err := store.ListMarks(context.Background(), jury.ID)
		if err != nil {
			t.Fatalf("Failed to list marks: %v", err)
		}
		if len(marks) != 2 || marks[0].Score != float64(i) {
			t.Errorf("Jury %s has unexpected marks %+v", jury.Name, marks)
		}
	}
}

// TestConcurrentSubmit verifies that a jury submitting from several tabs at
// once is only submitted once
func TestConcurrentSubmit(t *testing.T) {
	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewJuryHandler(store, cfg)

	jury := testutil.CreateTestJury(t, store, "Panel A", false, true)
	token := testutil.JuryToken(t, cfg, jury.ID)

	numRequests := 10
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.WithURLParams(httptest.NewRequest("POST", "/", nil), map[string]string{"name": jury.Name})
			req = testutil.WithSession(t, req, cfg, token)
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if okCount.Load() != 1 {
		t.Errorf("Expected exactly one successful submit, got %d", okCount.Load())
	}
	if int(okCount.Load()+conflictCount.Load()) != numRequests {
		t.Errorf("Expected the rest to conflict, got %d ok and %d conflicts", okCount.Load(), conflictCount.Load())
	}

	got, err := store.GetJury(context.Background(), jury.ID)
	if err != nil {
		t.Fatalf("Failed to get jury: %v", err)
	}
	if !got.HasSubmitted || got.Paused {
		t.Errorf("Expected submitted and not paused, got %+v", got)
	}
}

// TestConcurrentCriteriaAdds verifies no criterion is lost when the admin
// panel is open in several windows
func TestConcurrentCriteriaAdds(t *testing.T) {
	store := testutil.SetupTestStore(t)
	handler := NewCriteriaHandler(store)

	numAdds := 10
	var wg sync.WaitGroup
	for i := 0; i < numAdds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.Add(w, testutil.MakeRequest("POST", "/api/criteria", models.AddCriterionRequest{Value: fmt.Sprintf("c%d", i)}, nil))
		}(i)
	}
	wg.Wait()

	list, err := store.ListCriteria(context.Background())
	if err != nil {
		t.Fatalf("Failed to list criteria: %v", err)
	}
	if len(list) != numAdds {
		t.Errorf("Expected %d criteria, got %d: %v", numAdds, len(list), list)
	}
}
