// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/dashboard"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
)

type AdminHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewAdminHandler(store *db.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: store, cfg: cfg}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, sess, err := AdminLogin(h.cfg, req.Password)
	if err != nil {
		slog.Warn("admin login failed", "ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	middleware.SetSessionCookie(w, models.ScopeAdmin, token, sess.ExpiresAt)
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// AdminLogin checks the admin password and issues an admin session
func AdminLogin(cfg cliparse.Config, password string) (string, auth.Session, error) {
	if err := auth.CheckPassword(cfg.AdminPasswordHash, password); err != nil {
		return "", auth.Session{}, err
	}

	token, sess, err := auth.IssueSession(cfg.SessionSecret, models.ScopeAdmin, models.ScopeAdmin, cfg.SessionTTL)
	if err != nil {
		return "", auth.Session{}, err
	}

	slog.Info("admin logged in", "session_id", sess.ID)
	return token, sess, nil
}

// Logout handles POST /api/admin/logout
// Revokes the presented session, if any, and clears the cookie
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := RevokeSession(r, h.store, h.cfg); err != nil {
		slog.Error("failed to revoke session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	middleware.ClearSessionCookie(w, models.ScopeAdmin)
	w.WriteHeader(http.StatusNoContent)
}

// RevokeSession revokes the admin session carried by r. Invalid or missing
// tokens are ignored since they grant nothing.
func RevokeSession(r *http.Request, store *db.Store, cfg cliparse.Config) error {
	token := middleware.SessionToken(r, models.ScopeAdmin)
	if token == "" {
		return nil
	}
	sess, err := auth.ParseSession(cfg.SessionSecret, token)
	if err != nil {
		return nil
	}
	if err := store.RevokeSession(r.Context(), sess.ID, sess.ExpiresAt); err != nil {
		return err
	}
	slog.Info("admin logged out", "session_id", sess.ID)
	return nil
}

// Me handles GET /api/admin/me
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		Scope:     sess.Scope,
		Subject:   sess.Subject,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Dashboard handles GET /api/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := dashboard.Load(r.Context(), h.store)
	if err != nil {
		slog.Error("failed to load dashboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load admin data. Please try again.")
		return
	}

	conflicting := dashboard.Conflicting(snap.Juries)
	if len(conflicting) > 0 {
		slog.Warn("juries flagged both submitted and paused", "juries", conflicting)
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		Stats:       snap.Stats(),
		Juries:      snap.Juries,
		Teams:       snap.Teams,
		Config:      snap.Config,
		LastReset:   LastReset(snap.Config),
		Conflicting: conflicting,
	})
}

// LastReset renders the recorded reset time relative to now, or "" if none
func LastReset(cfg models.Config) string {
	at, err := time.Parse(time.RFC3339, cfg[models.ConfigLastResetAt])
	if err != nil {
		return ""
	}
	return humanize.Time(at)
}

// GetConfig handles GET /api/config
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetConfig(r.Context())
	if err != nil {
		slog.Error("failed to get config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cfg)
}

// UpdateConfig handles PUT /api/config
// Keys with empty values are removed
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "no config values given")
		return
	}
	for k := range req {
		if k == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "config keys cannot be empty")
			return
		}
	}

	if err := h.store.SetConfig(r.Context(), req); err != nil {
		slog.Error("failed to update config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update config")
		return
	}

	slog.Info("config updated", "keys", len(req))
	h.GetConfig(w, r)
}

// Reset handles POST /api/config/reset
// Without an explicit confirmation nothing is touched
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !req.Confirm {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Reset must be confirmed")
		return
	}

	if err := h.store.Reset(r.Context(), time.Now()); err != nil {
		slog.Error("failed to reset data", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset data")
		return
	}

	slog.Warn("all data reset")
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "All data reset!"})
}
