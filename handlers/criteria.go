// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/markboard/criteria"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
)

type CriteriaHandler struct {
	store *db.Store
}

func NewCriteriaHandler(store *db.Store) *CriteriaHandler {
	return &CriteriaHandler{store: store}
}

// List handles GET /api/criteria
func (h *CriteriaHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListCriteria(r.Context())
	if err != nil {
		slog.Error("failed to list criteria", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

// Add handles POST /api/criteria
// The value is trimmed and upper-cased before it is stored
func (h *CriteriaHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddCriterionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	label, err := criteria.Normalize(req.Value)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Please enter a valid criterion")
		return
	}

	if err := h.store.AddCriterion(r.Context(), label); err != nil {
		slog.Error("failed to add criterion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add criterion")
		return
	}

	slog.Info("criterion added", "label", label)
	h.List(w, r)
}

// Remove handles DELETE /api/criteria/{index}
func (h *CriteriaHandler) Remove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "index must be a number")
		return
	}

	err = h.store.RemoveCriterion(r.Context(), index)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Criterion not found")
		return
	}
	if err != nil {
		slog.Error("failed to remove criterion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove criterion")
		return
	}

	slog.Info("criterion removed", "index", index)
	h.List(w, r)
}
