// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
)

type TeamHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewTeamHandler(store *db.Store, cfg cliparse.Config) *TeamHandler {
	return &TeamHandler{store: store, cfg: cfg}
}

// List handles GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.store.ListTeams(r.Context())
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, teams)
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTeamRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	teamID, err := h.store.CreateTeam(r.Context(), name, strings.TrimSpace(req.Project))
	if errors.Is(err, db.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, "Team name already exists")
		return
	}
	if err != nil {
		slog.Error("failed to insert team", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create team")
		return
	}

	slog.Info("team created", "team_id", teamID, "name", name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: teamID})
}

// Delete handles DELETE /api/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")

	err := h.store.DeleteTeam(r.Context(), teamID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Team not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete team", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete team")
		return
	}

	slog.Info("team deleted", "team_id", teamID)
	w.WriteHeader(http.StatusNoContent)
}
