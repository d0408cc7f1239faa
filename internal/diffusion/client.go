// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package diffusion provides the HTTP client for the Stable Diffusion
// backend API. The backend runs the actual model inference and exposes
// two endpoints: POST /generate and GET /health. The client treats it as
// an opaque collaborator and only translates requests and responses.
package diffusion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GenerationRequest is the JSON body sent to the backend's /generate
// endpoint. Width, Height, and Seed are optional extras the backend accepts
// beyond the core four parameters.
type GenerationRequest struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	Seed              *int64  `json:"seed,omitempty"`
}

// GeneratedImage is a successful /generate response. Image is a PNG data
// URL directly usable as an <img> source.
type GeneratedImage struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
	Seed   *int64 `json:"seed,omitempty"`
	Device string `json:"device,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Health is the backend's /health response.
type Health struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Device string `json:"device"`
	Loaded bool   `json:"loaded"`
}

// APIError is a non-2xx response from the backend. Detail carries the
// backend's human-readable message when one was provided (the backend
// reports errors as {"detail": "..."}).
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("diffusion API error (status %d): %s", e.StatusCode, e.Detail)
}

// Client talks to a single Stable Diffusion backend instance.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the backend at baseURL. The timeout bounds
// the whole generation round-trip; CPU inference can take minutes, so
// callers should pass a generous value.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate submits one generation request and returns the resulting image.
// Backend-reported failures come back as *APIError; transport failures are
// returned wrapped.
func (c *Client) Generate(ctx context.Context, genReq GenerationRequest) (*GeneratedImage, error) {
	payload, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("diffusion marshal: %w", err)
	}

	url := c.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("diffusion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diffusion http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("diffusion read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var result GeneratedImage
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("diffusion unmarshal: %w", err)
	}
	if result.Image == "" {
		return nil, fmt.Errorf("diffusion: backend returned no image")
	}

	return &result, nil
}

// Health probes the backend's /health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("diffusion request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diffusion http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("diffusion read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var h Health
	if err := json.Unmarshal(respBody, &h); err != nil {
		return nil, fmt.Errorf("diffusion unmarshal: %w", err)
	}
	return &h, nil
}

// newAPIError extracts the backend's detail message from an error body.
// Non-JSON bodies fall back to a status-derived message.
func newAPIError(status int, body []byte) *APIError {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return &APIError{StatusCode: status, Detail: e.Detail}
	}
	return &APIError{StatusCode: status, Detail: fmt.Sprintf("backend returned status %d", status)}
}
