// Package main is the entry point for the SD Studio server.
// It loads configuration, wires the diffusion backend client, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sdstudio/internal/config"
	"sdstudio/internal/diffusion"
	"sdstudio/internal/handlers"
	"sdstudio/internal/middleware"
	"sdstudio/internal/render"
	"sdstudio/internal/router"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"sd_api_url", cfg.SDAPIURL,
	)

	// Initialize the HTML template renderer for the studio page.
	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Client for the Stable Diffusion backend.
	backend := diffusion.NewClient(cfg.SDAPIURL, cfg.SDGenerateTimeout)

	// Warn (but keep starting) if the backend is not reachable yet — it
	// loads the model on startup and can lag behind this process.
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 5*time.Second)
	if h, err := backend.Health(probeCtx); err != nil {
		slog.Warn("diffusion backend not reachable yet", "error", err)
	} else {
		slog.Info("diffusion backend ready", "model", h.Model, "device", h.Device, "loaded", h.Loaded)
	}
	cancelProbe()

	// Per-IP rate limiting for the generation endpoints.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Stop()

	api := handlers.NewAPI(renderer, backend)

	// Set up the Chi router with all middleware and routes.
	r := router.New(api, limiter, cfg.AllowedOrigins)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate generation requests that wait on model inference
	// (tens of seconds on GPU, minutes on CPU).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.SDGenerateTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
