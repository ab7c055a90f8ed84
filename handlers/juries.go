// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/views"
)

type JuryHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewJuryHandler(store *db.Store, cfg cliparse.Config) *JuryHandler {
	return &JuryHandler{store: store, cfg: cfg}
}

// pathParam returns a route parameter decoded exactly once. chi routes on
// RawPath when the request has one, which leaves escapes such as %2F in
// the parameter; otherwise the parameter is already decoded.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func juryNameParam(r *http.Request) string {
	return pathParam(r, "name")
}

// List handles GET /api/juries
func (h *JuryHandler) List(w http.ResponseWriter, r *http.Request) {
	juries, err := h.store.ListJuries(r.Context())
	if err != nil {
		slog.Error("failed to list juries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load juries. Please try again.")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, juries)
}

// Create handles POST /api/juries
func (h *JuryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJuryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	juryID, err := h.store.CreateJury(r.Context(), name)
	if errors.Is(err, db.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, "Jury name already exists")
		return
	}
	if err != nil {
		slog.Error("failed to insert jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create jury")
		return
	}

	slog.Info("jury created", "jury_id", juryID, "name", name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: juryID})
}

// Delete handles DELETE /api/juries/{id}
func (h *JuryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	juryID := chi.URLParam(r, "id")

	err := h.store.DeleteJury(r.Context(), juryID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Jury not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete jury")
		return
	}

	slog.Info("jury deleted", "jury_id", juryID)
	w.WriteHeader(http.StatusNoContent)
}

// Reopen handles POST /api/juries/{id}/reopen
// Clears the submitted flag so the jury can change its marks again
func (h *JuryHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	juryID := chi.URLParam(r, "id")

	err := h.store.ReopenJury(r.Context(), juryID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Jury not found")
		return
	}
	if err != nil {
		slog.Error("failed to reopen jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reopen jury")
		return
	}

	slog.Info("jury reopened", "jury_id", juryID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Jury reopened"})
}

// Access handles POST /api/juries/{name}/access
// The gate accepts the jury's own name or the master key, case-insensitively
func (h *JuryHandler) Access(w http.ResponseWriter, r *http.Request) {
	var req models.JuryAccessRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	jury, err := h.store.GetJuryByName(r.Context(), juryNameParam(r))
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Jury not found")
		return
	}
	if err != nil {
		slog.Error("failed to query jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.CheckJuryAccess(jury.Name, req.Password, h.cfg.MasterKey) {
		slog.Warn("jury access denied",
			"jury_id", jury.ID,
			"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret),
		)
		middleware.ErrorResponse(w, http.StatusUnauthorized, views.MsgIncorrectPassword)
		return
	}

	token, sess, err := auth.IssueSession(h.cfg.SessionSecret, models.ScopeJury, jury.ID, h.cfg.SessionTTL)
	if err != nil {
		slog.Error("failed to issue jury session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	middleware.SetSessionCookie(w, models.ScopeJury, token, sess.ExpiresAt)
	slog.Info("jury unlocked", "jury_id", jury.ID)

	middleware.JSONResponse(w, http.StatusOK, models.JuryAccessResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		Redirect:  views.JuryPath(jury.Name),
	})
}

// sessionJury resolves {name} and checks it belongs to the caller's jury session.
// It writes the error response itself and returns false on failure.
func (h *JuryHandler) sessionJury(w http.ResponseWriter, r *http.Request) (models.Jury, bool) {
	jury, err := h.store.GetJuryByName(r.Context(), juryNameParam(r))
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Jury not found")
		return models.Jury{}, false
	}
	if err != nil {
		slog.Error("failed to query jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Jury{}, false
	}

	sess, ok := auth.FromContext(r.Context())
	if !ok || sess.Subject != jury.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Session does not belong to this jury")
		return models.Jury{}, false
	}
	return jury, true
}

// GetMarks handles GET /api/juries/{name}/marks
func (h *JuryHandler) GetMarks(w http.ResponseWriter, r *http.Request) {
	jury, ok := h.sessionJury(w, r)
	if !ok {
		return
	}

	marks, err := h.store.ListMarks(r.Context(), jury.ID)
	if err != nil {
		slog.Error("failed to list marks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, marks)
}

// SaveMarks handles PUT /api/juries/{name}/marks
func (h *JuryHandler) SaveMarks(w http.ResponseWriter, r *http.Request) {
	jury, ok := h.sessionJury(w, r)
	if !ok {
		return
	}

	var req models.SaveMarksRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Marks) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "marks cannot be empty")
		return
	}

	if jury.HasSubmitted {
		middleware.ErrorResponse(w, http.StatusConflict, "Marks already submitted")
		return
	}

	if msg, err := checkMarks(r.Context(), h.store, req.Marks); err != nil {
		slog.Error("failed to validate marks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	} else if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	err := h.store.SaveMarks(r.Context(), jury.ID, req.Marks)
	if errors.Is(err, db.ErrSubmitted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Marks already submitted")
		return
	}
	if err != nil {
		slog.Error("failed to save marks", "error", err, "jury_id", jury.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save marks")
		return
	}

	slog.Info("marks saved", "jury_id", jury.ID, "count", len(req.Marks))
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Marks saved"})
}

// Pause handles POST /api/juries/{name}/pause
func (h *JuryHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

// Resume handles POST /api/juries/{name}/resume
func (h *JuryHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false)
}

func (h *JuryHandler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	jury, ok := h.sessionJury(w, r)
	if !ok {
		return
	}

	err := h.store.SetPaused(r.Context(), jury.ID, paused)
	if errors.Is(err, db.ErrSubmitted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Marks already submitted")
		return
	}
	if err != nil {
		slog.Error("failed to update jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("jury pause changed", "jury_id", jury.ID, "paused", paused)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Saved"})
}

// Submit handles POST /api/juries/{name}/submit
// Submitting clears any pause so the jury lands in exactly one bucket
func (h *JuryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	jury, ok := h.sessionJury(w, r)
	if !ok {
		return
	}

	err := h.store.SubmitJury(r.Context(), jury.ID)
	if errors.Is(err, db.ErrSubmitted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Marks already submitted")
		return
	}
	if err != nil {
		slog.Error("failed to submit jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit marks")
		return
	}

	slog.Info("jury submitted", "jury_id", jury.ID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Marks submitted"})
}
