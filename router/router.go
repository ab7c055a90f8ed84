// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/cliparse"
	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/handlers"
	"github.com/danielhkuo/markboard/middleware"
	"github.com/danielhkuo/markboard/models"
	"github.com/danielhkuo/markboard/views"
)

func NewRouter(store *db.Store, cfg cliparse.Config, renderer *views.Renderer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging)
	r.Use(middleware.CORS)

	verifier := auth.Verifier{Secret: cfg.SessionSecret, Revoked: store}

	// Initialize handlers
	juryHandler := handlers.NewJuryHandler(store, cfg)
	teamHandler := handlers.NewTeamHandler(store, cfg)
	criteriaHandler := handlers.NewCriteriaHandler(store)
	adminHandler := handlers.NewAdminHandler(store, cfg)
	exportHandler := handlers.NewExportHandler(store)
	pageHandler := handlers.NewPageHandler(store, cfg, renderer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/juries", juryHandler.List)
		r.Post("/juries/{name}/access", juryHandler.Access)
		r.Get("/teams", teamHandler.List)
		r.Get("/criteria", criteriaHandler.List)
		r.Get("/leaderboard", exportHandler.Leaderboard)
		r.Post("/admin/login", adminHandler.Login)
		r.Post("/admin/logout", adminHandler.Logout)

		// Jury marking (session subject must be the jury in the path)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(verifier, models.ScopeJury))

			r.Get("/juries/{name}/marks", juryHandler.GetMarks)
			r.Put("/juries/{name}/marks", juryHandler.SaveMarks)
			r.Post("/juries/{name}/pause", juryHandler.Pause)
			r.Post("/juries/{name}/resume", juryHandler.Resume)
			r.Post("/juries/{name}/submit", juryHandler.Submit)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(verifier, models.ScopeAdmin))

			r.Get("/admin/me", adminHandler.Me)
			r.Get("/dashboard", adminHandler.Dashboard)

			r.Post("/juries", juryHandler.Create)
			r.Delete("/juries/{id}", juryHandler.Delete)
			r.Post("/juries/{id}/reopen", juryHandler.Reopen)

			r.Post("/teams", teamHandler.Create)
			r.Delete("/teams/{id}", teamHandler.Delete)

			r.Get("/config", adminHandler.GetConfig)
			r.Put("/config", adminHandler.UpdateConfig)
			r.Post("/config/reset", adminHandler.Reset)

			r.Post("/criteria", criteriaHandler.Add)
			r.Delete("/criteria/{index}", criteriaHandler.Remove)

			r.Get("/export/leaderboard", exportHandler.LeaderboardExcel)
			r.Get("/export/juries/{name}", exportHandler.JuryExcel)
		})
	})

	// Pages
	r.Get("/", pageHandler.Landing)
	r.Post("/access", pageHandler.Access)
	r.Get("/admin/login", pageHandler.AdminLoginForm)
	r.Post("/admin/login", pageHandler.AdminLogin)
	r.Post("/admin/logout", pageHandler.AdminLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageSession(verifier, models.ScopeJury))

		r.Get("/jury/{juryName}", pageHandler.Jury)
		r.Post("/jury/{juryName}/marks", pageHandler.JuryMarks)
		r.Post("/jury/{juryName}/pause", pageHandler.JuryPause)
		r.Post("/jury/{juryName}/resume", pageHandler.JuryResume)
		r.Post("/jury/{juryName}/submit", pageHandler.JurySubmit)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageSession(verifier, models.ScopeAdmin))

		r.Get("/admin", pageHandler.Admin)
		r.Get("/admin/reset", pageHandler.AdminResetConfirm)
		r.Post("/admin/reset", pageHandler.AdminReset)
		r.Post("/admin/criteria", pageHandler.AdminAddCriterion)
		r.Post("/admin/criteria/{index}/delete", pageHandler.AdminRemoveCriterion)
		r.Post("/admin/juries", pageHandler.AdminCreateJury)
		r.Post("/admin/juries/{id}/delete", pageHandler.AdminDeleteJury)
		r.Post("/admin/juries/{id}/reopen", pageHandler.AdminReopenJury)
		r.Post("/admin/teams", pageHandler.AdminCreateTeam)
		r.Post("/admin/teams/{id}/delete", pageHandler.AdminDeleteTeam)
		r.Post("/admin/config", pageHandler.AdminSetConfig)
	})

	return r
}
