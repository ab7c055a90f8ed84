// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/dashboard"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/views"
)

const msgJuriesLoadFailed = "Failed to load juries. Please try again."

// PageHandler serves the server-rendered pages. Every mutation re-reads the
// data it displays before rendering.
type PageHandler struct {
	store *db.Store
	cfg   cliparse.Config
	views *views.Renderer
}

func NewPageHandler(store *db.Store, cfg cliparse.Config, renderer *views.Renderer) *PageHandler {
	return &PageHandler{store: store, cfg: cfg, views: renderer}
}

// render executes the page fully before anything is written, so a template
// failure becomes a 500 instead of a blank page.
func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, page, data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Failed to render page. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to send page", "page", page, "error", err)
	}
}

// landing builds the landing page with the jury list already loaded
func (h *PageHandler) landing(r *http.Request) (views.LandingPage, error) {
	page := views.LandingPage{Footer: views.NewFooter(r.URL)}
	juries, err := h.store.ListJuries(r.Context())
	if err != nil {
		page.LoadError = msgJuriesLoadFailed
		return page, err
	}
	page.Juries = juries
	page.Stats = dashboard.ComputeStats(juries, 0)
	return page, nil
}

// Landing handles GET /
// ?jury=<id> opens the access modal for that jury
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	page, err := h.landing(r)
	if err != nil {
		slog.Error("failed to list juries", "error", err)
		h.render(w, http.StatusInternalServerError, views.PageLanding, page)
		return
	}

	if id := r.URL.Query().Get("jury"); id != "" {
		for _, j := range page.Juries {
			if j.ID == id {
				page.Gate.Select(j)
				break
			}
		}
	}

	h.render(w, http.StatusOK, views.PageLanding, page)
}

// Access handles POST /access
func (h *PageHandler) Access(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	page, err := h.landing(r)
	if err != nil {
		slog.Error("failed to list juries", "error", err)
		h.render(w, http.StatusInternalServerError, views.PageLanding, page)
		return
	}

	var jury *models.Jury
	for i := range page.Juries {
		if page.Juries[i].ID == r.PostFormValue("jury") {
			jury = &page.Juries[i]
			break
		}
	}
	if jury == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	page.Gate.Select(*jury)
	path, ok := page.Gate.Submit(r.PostFormValue("password"), h.cfg.MasterKey)
	if !ok {
		slog.Warn("jury access denied",
			"jury_id", jury.ID,
			"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret),
		)
		h.render(w, http.StatusUnauthorized, views.PageLanding, page)
		return
	}

	token, sess, err := auth.IssueSession(h.cfg.SessionSecret, models.ScopeJury, jury.ID, h.cfg.SessionTTL)
	if err != nil {
		slog.Error("failed to issue jury session", "error", err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	middleware.SetSessionCookie(w, models.ScopeJury, token, sess.ExpiresAt)
	slog.Info("jury unlocked", "jury_id", jury.ID)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// pageJury resolves {juryName} for the jury in the request's session.
// Anyone else is sent back to the landing page.
func (h *PageHandler) pageJury(w http.ResponseWriter, r *http.Request) (models.Jury, bool) {
	name := pathParam(r, "juryName")
	jury, err := h.store.GetJuryByName(r.Context(), name)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			slog.Error("failed to query jury", "error", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return models.Jury{}, false
	}

	sess, ok := auth.FromContext(r.Context())
	if !ok || sess.Subject != jury.ID {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return models.Jury{}, false
	}
	return jury, true
}

// jurySheet loads everything the marking page displays
func (h *PageHandler) jurySheet(r *http.Request, jury models.Jury) (views.JuryPage, error) {
	ctx := r.Context()
	teams, err := h.store.ListTeams(ctx)
	if err != nil {
		return views.JuryPage{}, err
	}
	criteriaList, err := h.store.ListCriteria(ctx)
	if err != nil {
		return views.JuryPage{}, err
	}
	marks, err := h.store.ListMarks(ctx, jury.ID)
	if err != nil {
		return views.JuryPage{}, err
	}
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return views.JuryPage{}, err
	}

	page := views.NewJuryPage(jury, teams, criteriaList, marks)
	page.MaxScore = MaxScore(cfg)
	page.Footer = views.NewFooter(r.URL)
	return page, nil
}

// renderJury re-reads the jury and its sheet, then renders it with notice
func (h *PageHandler) renderJury(w http.ResponseWriter, r *http.Request, jury models.Jury, notice views.Notice) {
	if fresh, err := h.store.GetJury(r.Context(), jury.ID); err == nil {
		jury = fresh
	}

	page, err := h.jurySheet(r, jury)
	if err != nil {
		slog.Error("failed to load marking sheet", "error", err, "jury_id", jury.ID)
		http.Error(w, "Failed to load marking sheet. Please try again.", http.StatusInternalServerError)
		return
	}
	page.Notice = notice

	status := http.StatusOK
	if notice.IsError() {
		status = http.StatusUnprocessableEntity
	}
	h.render(w, status, views.PageJury, page)
}

// Jury handles GET /jury/{juryName}
func (h *PageHandler) Jury(w http.ResponseWriter, r *http.Request) {
	jury, ok := h.pageJury(w, r)
	if !ok {
		return
	}
	h.renderJury(w, r, jury, views.Notice{})
}

// JuryMarks handles POST /jury/{juryName}/marks
// Empty inputs are left unscored
func (h *PageHandler) JuryMarks(w http.ResponseWriter, r *http.Request) {
	jury, ok := h.pageJury(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderJury(w, r, jury, views.Failure("Invalid form"))
		return
	}

	ctx := r.Context()
	teams, err := h.store.ListTeams(ctx)
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		h.renderJury(w, r, jury, views.Failure("Failed to save marks"))
		return
	}
	criteriaList, err := h.store.ListCriteria(ctx)
	if err != nil {
		slog.Error("failed to list criteria", "error", err)
		h.renderJury(w, r, jury, views.Failure("Failed to save marks"))
		return
	}

	var marks []models.Mark
	for _, t := range teams {
		for i, c := range criteriaList {
			raw := strings.TrimSpace(r.PostFormValue(views.ScoreField(t.ID, i)))
			if raw == "" {
				continue
			}
			score, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				h.renderJury(w, r, jury, views.Failure("score for "+c+" must be a number"))
				return
			}
			marks = append(marks, models.Mark{TeamID: t.ID, Criterion: c, Score: score})
		}
	}
	if len(marks) == 0 {
		h.renderJury(w, r, jury, views.Failure("No marks entered"))
		return
	}

	if msg, err := checkMarks(ctx, h.store, marks); err != nil {
		slog.Error("failed to validate marks", "error", err)
		h.renderJury(w, r, jury, views.Failure("Failed to save marks"))
		return
	} else if msg != "" {
		h.renderJury(w, r, jury, views.Failure(msg))
		return
	}

	err = h.store.SaveMarks(ctx, jury.ID, marks)
	if errors.Is(err, db.ErrSubmitted) {
		h.renderJury(w, r, jury, views.Failure("Marks already submitted"))
		return
	}
	if err != nil {
		slog.Error("failed to save marks", "error", err, "jury_id", jury.ID)
		h.renderJury(w, r, jury, views.Failure("Failed to save marks"))
		return
	}

	slog.Info("marks saved", "jury_id", jury.ID, "count", len(marks))
	h.renderJury(w, r, jury, views.Success("Marks saved"))
}

// JuryPause handles POST /jury/{juryName}/pause
func (h *PageHandler) JuryPause(w http.ResponseWriter, r *http.Request) {
	h.juryAction(w, r, "Marking paused", func(j models.Jury) error {
		return h.store.SetPaused(r.Context(), j.ID, true)
	})
}

// JuryResume handles POST /jury/{juryName}/resume
func (h *PageHandler) JuryResume(w http.ResponseWriter, r *http.Request) {
	h.juryAction(w, r, "Marking resumed", func(j models.Jury) error {
		return h.store.SetPaused(r.Context(), j.ID, false)
	})
}

// JurySubmit handles POST /jury/{juryName}/submit
func (h *PageHandler) JurySubmit(w http.ResponseWriter, r *http.Request) {
	h.juryAction(w, r, "Marks submitted", func(j models.Jury) error {
		return h.store.SubmitJury(r.Context(), j.ID)
	})
}

func (h *PageHandler) juryAction(w http.ResponseWriter, r *http.Request, done string, action func(models.Jury) error) {
	jury, ok := h.pageJury(w, r)
	if !ok {
		return
	}

	err := action(jury)
	if errors.Is(err, db.ErrSubmitted) {
		h.renderJury(w, r, jury, views.Failure("Marks already submitted"))
		return
	}
	if err != nil {
		slog.Error("failed to update jury", "error", err, "jury_id", jury.ID)
		h.renderJury(w, r, jury, views.Failure("Failed to update: "+err.Error()))
		return
	}

	slog.Info("jury updated", "jury_id", jury.ID, "action", done)
	h.renderJury(w, r, jury, views.Success(done))
}

// AdminLoginForm handles GET /admin/login
// An admin who is already signed in goes straight to the panel
func (h *PageHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	verifier := auth.Verifier{Secret: h.cfg.SessionSecret, Revoked: h.store}
	if token := middleware.SessionToken(r, models.ScopeAdmin); token != "" {
		if _, err := verifier.Verify(r.Context(), token, models.ScopeAdmin); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}
	h.render(w, http.StatusOK, views.PageAdminLogin, views.LoginPage{Footer: views.NewFooter(r.URL)})
}

// AdminLogin handles POST /admin/login
func (h *PageHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	token, sess, err := AdminLogin(h.cfg, r.PostFormValue("password"))
	if err != nil {
		slog.Warn("admin login failed", "ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret))
		h.render(w, http.StatusUnauthorized, views.PageAdminLogin, views.LoginPage{
			Error:  "Invalid password",
			Footer: views.NewFooter(r.URL),
		})
		return
	}

	middleware.SetSessionCookie(w, models.ScopeAdmin, token, sess.ExpiresAt)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// AdminLogout handles POST /admin/logout
func (h *PageHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := RevokeSession(r, h.store, h.cfg); err != nil {
		slog.Error("failed to revoke session", "error", err)
	}
	middleware.ClearSessionCookie(w, models.ScopeAdmin)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminModel starts a model on the tab named by the tab query or form value
func (h *PageHandler) adminModel(r *http.Request) *views.AdminModel {
	m := views.NewAdminModel(h.store)
	tab, _ := views.ParseTab(r.FormValue("tab"))
	m.SelectTab(tab)
	return m
}

// renderAdmin refreshes the snapshot and renders the panel. Criteria are
// only fetched when the model has not loaded them yet.
func (h *PageHandler) renderAdmin(w http.ResponseWriter, r *http.Request, m *views.AdminModel, confirmReset bool) {
	if err := m.Refresh(r.Context()); err != nil {
		slog.Error("failed to load admin data", "error", err)
		h.render(w, http.StatusInternalServerError, views.PageAdmin, views.AdminPage{
			AdminModel: m,
			Tabs:       views.Tabs,
			Footer:     views.NewFooter(r.URL),
		})
		return
	}
	if conflicting := dashboard.Conflicting(m.Snapshot.Juries); len(conflicting) > 0 {
		slog.Warn("juries flagged both submitted and paused", "juries", conflicting)
	}
	if m.Criteria == nil {
		if err := m.LoadCriteria(r.Context()); err != nil {
			slog.Error("failed to load criteria", "error", err)
		}
	}

	h.render(w, http.StatusOK, views.PageAdmin, views.AdminPage{
		AdminModel:   m,
		Tabs:         views.Tabs,
		ConfirmReset: confirmReset,
		LastReset:    LastReset(m.Snapshot.Config),
		MaxScore:     MaxScore(m.Snapshot.Config),
		Footer:       views.NewFooter(r.URL),
	})
}

// Admin handles GET /admin?tab=<tab>
func (h *PageHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, h.adminModel(r), false)
}

// AdminResetConfirm handles GET /admin/reset
// Shows the confirmation dialog; nothing is changed
func (h *PageHandler) AdminResetConfirm(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, h.adminModel(r), true)
}

// AdminReset handles POST /admin/reset
func (h *PageHandler) AdminReset(w http.ResponseWriter, r *http.Request) {
	m := h.adminModel(r)

	err := m.Reset(r.Context(), r.PostFormValue("confirm") == "yes")
	if errors.Is(err, views.ErrResetNotConfirmed) {
		http.Redirect(w, r, "/admin?tab="+m.Tab.Key(), http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("failed to reset data", "error", err)
	} else {
		slog.Warn("all data reset")
	}
	h.renderAdmin(w, r, m, false)
}

// AdminAddCriterion handles POST /admin/criteria
func (h *PageHandler) AdminAddCriterion(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabCriteria)

	if err := m.AddCriterion(r.Context(), r.PostFormValue("value")); err != nil {
		slog.Warn("criterion not added", "error", err)
	} else {
		slog.Info("criterion added", "count", len(m.Criteria))
	}
	h.renderAdmin(w, r, m, false)
}

// AdminRemoveCriterion handles POST /admin/criteria/{index}/delete
func (h *PageHandler) AdminRemoveCriterion(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabCriteria)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		m.Notice = views.Failure("Invalid criterion index")
	} else if err := m.RemoveCriterion(r.Context(), index); err != nil {
		slog.Warn("criterion not removed", "index", index, "error", err)
	} else {
		slog.Info("criterion removed", "index", index)
	}
	h.renderAdmin(w, r, m, false)
}

// AdminCreateJury handles POST /admin/juries
func (h *PageHandler) AdminCreateJury(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabJuries)

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		m.Notice = views.Failure("Please enter a jury name")
		h.renderAdmin(w, r, m, false)
		return
	}

	id, err := h.store.CreateJury(r.Context(), name)
	m.Notice = mutationNotice(err, "Jury added", "Jury name already exists", "Failed to add jury")
	if err == nil {
		slog.Info("jury created", "jury_id", id, "name", name)
	}
	h.renderAdmin(w, r, m, false)
}

// AdminDeleteJury handles POST /admin/juries/{id}/delete
func (h *PageHandler) AdminDeleteJury(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabJuries)

	id := chi.URLParam(r, "id")
	err := h.store.DeleteJury(r.Context(), id)
	m.Notice = mutationNotice(err, "Jury deleted", "", "Failed to delete jury")
	if err == nil {
		slog.Info("jury deleted", "jury_id", id)
	}
	h.renderAdmin(w, r, m, false)
}

// AdminReopenJury handles POST /admin/juries/{id}/reopen
func (h *PageHandler) AdminReopenJury(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabJuries)

	id := chi.URLParam(r, "id")
	err := h.store.ReopenJury(r.Context(), id)
	m.Notice = mutationNotice(err, "Jury reopened", "", "Failed to reopen jury")
	if err == nil {
		slog.Info("jury reopened", "jury_id", id)
	}
	h.renderAdmin(w, r, m, false)
}

// AdminCreateTeam handles POST /admin/teams
func (h *PageHandler) AdminCreateTeam(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabTeams)

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		m.Notice = views.Failure("Please enter a team name")
		h.renderAdmin(w, r, m, false)
		return
	}

	id, err := h.store.CreateTeam(r.Context(), name, strings.TrimSpace(r.PostFormValue("project")))
	m.Notice = mutationNotice(err, "Team added", "Team name already exists", "Failed to add team")
	if err == nil {
		slog.Info("team created", "team_id", id, "name", name)
	}
	h.renderAdmin(w, r, m, false)
}

// AdminDeleteTeam handles POST /admin/teams/{id}/delete
func (h *PageHandler) AdminDeleteTeam(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabTeams)

	id := chi.URLParam(r, "id")
	err := h.store.DeleteTeam(r.Context(), id)
	m.Notice = mutationNotice(err, "Team deleted", "", "Failed to delete team")
	if err == nil {
		slog.Info("team deleted", "team_id", id)
	}
	h.renderAdmin(w, r, m, false)
}

// AdminSetConfig handles POST /admin/config
// An empty value removes the key
func (h *PageHandler) AdminSetConfig(w http.ResponseWriter, r *http.Request) {
	m := views.NewAdminModel(h.store)
	m.SelectTab(views.TabConfig)

	key := strings.TrimSpace(r.PostFormValue("key"))
	if key == "" {
		m.Notice = views.Failure("Please enter a config key")
		h.renderAdmin(w, r, m, false)
		return
	}

	err := h.store.SetConfig(r.Context(), map[string]string{key: strings.TrimSpace(r.PostFormValue("value"))})
	m.Notice = mutationNotice(err, "Configuration saved", "", "Failed to save configuration")
	if err == nil {
		slog.Info("config updated", "key", key)
	}
	h.renderAdmin(w, r, m, false)
}

// mutationNotice maps a store error to the notice shown above the panel
func mutationNotice(err error, done, duplicate, failed string) views.Notice {
	switch {
	case err == nil:
		return views.Success(done)
	case errors.Is(err, db.ErrDuplicate) && duplicate != "":
		return views.Failure(duplicate)
	case errors.Is(err, db.ErrNotFound):
		return views.Failure(failed + ": not found")
	default:
		slog.Error(strings.ToLower(failed), "error", err)
		return views.Failure(failed)
	}
}
