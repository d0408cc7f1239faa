// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP surface of the studio: the shell
// page, the generation API, the download endpoint, and the backend health
// passthrough. Errors always travel as {"detail": "..."} to match the
// diffusion backend's own error shape, so the browser handles both the
// same way.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"sdstudio/internal/diffusion"
	"sdstudio/internal/render"
)

// ImageGenerator abstracts the diffusion backend so tests can stub the
// upstream call.
type ImageGenerator interface {
	Generate(ctx context.Context, req diffusion.GenerationRequest) (*diffusion.GeneratedImage, error)
	Health(ctx context.Context) (*diffusion.Health, error)
}

// API groups all HTTP handlers and their dependencies.
type API struct {
	renderer *render.Renderer
	backend  ImageGenerator
	validate *validator.Validate
}

// NewAPI creates the handler group.
func NewAPI(renderer *render.Renderer, backend ImageGenerator) *API {
	return &API{
		renderer: renderer,
		backend:  backend,
		validate: validator.New(),
	}
}

// detailResponse mirrors the backend's error body.
type detailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDetail writes an error response in the backend's {"detail"} shape.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detailResponse{Detail: msg})
}
