// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// SD Studio server.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sdstudio/internal/handlers"
	"sdstudio/internal/middleware"
	"sdstudio/web"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up. The rate limiter only guards the generation
// endpoints; page loads and probes stay unthrottled.
func New(api *handlers.API, limiter *middleware.RateLimiter, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(allowedOrigins))

	// The single page.
	r.Get("/", api.Home)

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", api.Health)
		r.Get("/examples", api.Examples)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/generate", api.Generate)
			r.Post("/download", api.Download)
		})
	})

	// Embedded static assets (app.js, styles.css).
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		// The static tree is compiled into the binary; a missing
		// subdirectory is a build defect, not a runtime condition.
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return r
}
