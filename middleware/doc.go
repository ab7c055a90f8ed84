// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	r.Use(middleware.WithLogging)

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sessions

RequireSession guards API routes and answers 401; RequirePageSession guards
pages and redirects to the landing page instead. Both accept a bearer token
or the scope's cookie and put the verified session in the request context.

	r.Use(middleware.RequireSession(verifier, models.ScopeAdmin))

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.AddCriterionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
