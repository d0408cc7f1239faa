// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sdstudio/internal/prompts"
	"sdstudio/internal/render"
)

const (
	pageTitle    = "SD Studio"
	pageSubtitle = "Text-to-image generation with Stable Diffusion, on your own hardware"
)

// Home renders the single page: static chrome plus the generator form,
// seeded with the default parameters and the example prompts.
func (a *API) Home(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, "index", &render.PageData{
		Title:    pageTitle,
		Subtitle: pageSubtitle,
		Examples: prompts.List(),
		Defaults: render.Defaults{
			NegativePrompt: defaultNegativePrompt,
			Steps:          defaultSteps,
			MinSteps:       minSteps,
			MaxSteps:       maxSteps,
			GuidanceScale:  defaultGuidance,
			MinGuidance:    minGuidance,
			MaxGuidance:    maxGuidance,
		},
	})
}

type examplesResponse struct {
	Examples []string `json:"examples"`
}

// Examples returns the canned example prompts in display order.
func (a *API) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, examplesResponse{Examples: prompts.List()})
}

// Health probes the diffusion backend and relays its status. The probe gets
// its own short deadline so a wedged backend cannot hold the request open.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h, err := a.backend.Health(ctx)
	if err != nil {
		slog.Warn("backend health probe failed", "error", err)
		status, detail := upstreamError(err)
		writeDetail(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, h)
}
