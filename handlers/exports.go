// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/export"
	"github.com/danielhkuo/markboard/middleware"
)

type ExportHandler struct {
	store *db.Store
}

func NewExportHandler(store *db.Store) *ExportHandler {
	return &ExportHandler{store: store}
}

// Leaderboard handles GET /api/leaderboard
func (h *ExportHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := ComputeLeaderboard(r.Context(), h.store.DB())
	if err != nil {
		slog.Error("failed to compute leaderboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// LeaderboardExcel handles GET /api/export/leaderboard
func (h *ExportHandler) LeaderboardExcel(w http.ResponseWriter, r *http.Request) {
	entries, err := ComputeLeaderboard(r.Context(), h.store.DB())
	if err != nil {
		slog.Error("failed to compute leaderboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var buf bytes.Buffer
	if err := export.Leaderboard(&buf, entries); err != nil {
		slog.Error("failed to build leaderboard workbook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export leaderboard")
		return
	}

	slog.Info("leaderboard exported", "teams", len(entries))
	sendWorkbook(w, "leaderboard.xlsx", &buf)
}

// JuryExcel handles GET /api/export/juries/{name}
func (h *ExportHandler) JuryExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jury, err := h.store.GetJuryByName(ctx, juryNameParam(r))
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Jury not found")
		return
	}
	if err != nil {
		slog.Error("failed to query jury", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	data := export.JurySheetData{Jury: jury}
	if data.Teams, err = h.store.ListTeams(ctx); err == nil {
		if data.Criteria, err = h.store.ListCriteria(ctx); err == nil {
			data.Marks, err = h.store.ListMarks(ctx, jury.ID)
		}
	}
	if err != nil {
		slog.Error("failed to load jury report", "error", err, "jury_id", jury.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var buf bytes.Buffer
	if err := export.JurySheet(&buf, data); err != nil {
		slog.Error("failed to build jury workbook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export jury report")
		return
	}

	slog.Info("jury report exported", "jury_id", jury.ID)
	sendWorkbook(w, export.SheetName(jury.Name)+"_marks.xlsx", &buf)
}

func sendWorkbook(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to send workbook", "error", err)
	}
}
