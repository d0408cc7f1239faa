// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"sdstudio/internal/diffusion"
	"sdstudio/internal/middleware"
)

// Generation parameter bounds and defaults. The slider widgets enforce the
// same ranges client-side; the server re-validates because nothing stops a
// direct API call.
const (
	minSteps    = 10
	maxSteps    = 50
	minGuidance = 1.0
	maxGuidance = 20.0

	defaultNegativePrompt = "blurry, low quality, distorted"
	defaultSteps          = 25
	defaultGuidance       = 7.5
	defaultSize           = 512

	// Shown when a failure produced no usable message at all.
	fallbackErrorDetail = "Image generation failed. Please try again."

	maxBodyBytes = 1 << 20
)

// generateParams is the request body accepted by POST /api/generate.
// Width, Height, and Seed are optional; zero values mean "use the default".
type generateParams struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps" validate:"min=10,max=50"`
	GuidanceScale     float64 `json:"guidance_scale" validate:"min=1,max=20"`
	Width             int     `json:"width" validate:"omitempty,min=256,max=1024"`
	Height            int     `json:"height" validate:"omitempty,min=256,max=1024"`
	Seed              *int64  `json:"seed"`
}

// generateResponse is returned on success. RequestID lets the browser
// discard responses that no longer match its latest submission.
type generateResponse struct {
	RequestID string `json:"request_id"`
	Image     string `json:"image"`
	Prompt    string `json:"prompt"`
	Seed      *int64 `json:"seed,omitempty"`
	Device    string `json:"device,omitempty"`
	Model     string `json:"model,omitempty"`
}

// Generate validates the parameters and performs exactly one upstream call.
// Validation failures return 400 without touching the backend.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var p generateParams
	if err := readJSON(r, &p); err != nil {
		writeDetail(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	p.Prompt = strings.TrimSpace(p.Prompt)
	if p.Prompt == "" {
		writeDetail(w, http.StatusBadRequest, "Please enter a prompt to generate an image.")
		return
	}

	applyDefaults(&p)

	if detail := a.validateParams(&p); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}

	requestID := middleware.RequestIDFromCtx(r.Context())
	slog.Info("generation started",
		"request_id", requestID,
		"steps", p.NumInferenceSteps,
		"guidance", p.GuidanceScale,
	)

	result, err := a.backend.Generate(r.Context(), diffusion.GenerationRequest{
		Prompt:            p.Prompt,
		NegativePrompt:    p.NegativePrompt,
		NumInferenceSteps: p.NumInferenceSteps,
		GuidanceScale:     p.GuidanceScale,
		Width:             p.Width,
		Height:            p.Height,
		Seed:              p.Seed,
	})
	if err != nil {
		status, detail := upstreamError(err)
		slog.Error("generation failed", "request_id", requestID, "status", status, "error", err)
		writeDetail(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		RequestID: requestID,
		Image:     result.Image,
		Prompt:    result.Prompt,
		Seed:      result.Seed,
		Device:    result.Device,
		Model:     result.Model,
	})
}

// readJSON decodes a size-limited JSON request body.
func readJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

// applyDefaults fills unset optional parameters.
func applyDefaults(p *generateParams) {
	if p.NegativePrompt == "" {
		p.NegativePrompt = defaultNegativePrompt
	}
	if p.NumInferenceSteps == 0 {
		p.NumInferenceSteps = defaultSteps
	}
	if p.GuidanceScale == 0 {
		p.GuidanceScale = defaultGuidance
	}
	// Width and Height default together so a caller setting only one does
	// not get a surprise aspect ratio.
	if p.Width == 0 && p.Height == 0 {
		p.Width = defaultSize
		p.Height = defaultSize
	}
}

// validateParams returns a human-readable message for the first violated
// constraint, or "" if the parameters are acceptable.
func (a *API) validateParams(p *generateParams) string {
	if err := a.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldDetail(verrs[0])
		}
		return fallbackErrorDetail
	}

	// The guidance slider moves in 0.5 increments; hold API callers to the
	// same grid.
	if math.Mod(p.GuidanceScale*2, 1) != 0 {
		return "guidance_scale must be a multiple of 0.5."
	}

	// The backend rejects dimensions not divisible by 8.
	if p.Width%8 != 0 || p.Height%8 != 0 {
		return "width and height must be divisible by 8 (e.g., 512, 768)."
	}

	return ""
}

// fieldDetail maps a validator error to the message shown to the user.
func fieldDetail(fe validator.FieldError) string {
	switch fe.Field() {
	case "NumInferenceSteps":
		return "num_inference_steps must be between 10 and 50."
	case "GuidanceScale":
		return "guidance_scale must be between 1 and 20."
	case "Width", "Height":
		return "width and height must be between 256 and 1024."
	}
	return fallbackErrorDetail
}

// upstreamError maps a backend failure to a response status and detail,
// following the precedence: backend-provided detail, then the transport
// error text, then a generic fallback.
func upstreamError(err error) (int, string) {
	var apiErr *diffusion.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, apiErr.Detail
	}

	if msg := err.Error(); msg != "" {
		return http.StatusBadGateway, msg
	}
	return http.StatusBadGateway, fallbackErrorDetail
}
