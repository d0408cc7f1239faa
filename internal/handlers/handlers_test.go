// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handlers_test.go provides shared test infrastructure: a stub backend so
// handler tests never touch a real diffusion server.
package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"sdstudio/internal/diffusion"
	"sdstudio/internal/render"
)

// stubBackend implements ImageGenerator and records every call.
type stubBackend struct {
	generateCalls int
	lastReq       diffusion.GenerationRequest

	result *diffusion.GeneratedImage
	err    error

	health    *diffusion.Health
	healthErr error
}

func (s *stubBackend) Generate(_ context.Context, req diffusion.GenerationRequest) (*diffusion.GeneratedImage, error) {
	s.generateCalls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubBackend) Health(_ context.Context) (*diffusion.Health, error) {
	if s.healthErr != nil {
		return nil, s.healthErr
	}
	return s.health, nil
}

// newTestAPI builds an API wired to the given stub, with real templates.
func newTestAPI(t *testing.T, backend *stubBackend) *API {
	t.Helper()
	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return NewAPI(renderer, backend)
}

// decodeDetail extracts the "detail" field from an error response body.
func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body detailResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode detail body: %v", err)
	}
	return body.Detail
}
