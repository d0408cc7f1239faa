// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sdstudio/internal/diffusion"
	"sdstudio/internal/middleware"
)

// postGenerate runs the Generate handler against a JSON body.
func postGenerate(t *testing.T, api *API, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	api.Generate(rr, req)
	return rr
}

func TestGenerate_EmptyPromptNeverCallsBackend(t *testing.T) {
	for _, body := range []string{
		`{"prompt":""}`,
		`{"prompt":"   "}`,
		`{"prompt":"\t\n"}`,
		`{}`,
	} {
		backend := &stubBackend{}
		api := newTestAPI(t, backend)

		rr := postGenerate(t, api, body)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status got %d, want 400", body, rr.Code)
		}
		if detail := decodeDetail(t, rr); detail == "" {
			t.Errorf("body %q: detail must be non-empty", body)
		}
		if backend.generateCalls != 0 {
			t.Errorf("body %q: backend called %d times, want 0", body, backend.generateCalls)
		}
	}
}

func TestGenerate_Success(t *testing.T) {
	backend := &stubBackend{
		result: &diffusion.GeneratedImage{
			Image:  "data:image/png;base64,iVBOR",
			Prompt: "P",
			Device: "cuda",
		},
	}
	api := newTestAPI(t, backend)

	rr := postGenerate(t, api, `{"prompt":"P","num_inference_steps":30,"guidance_scale":8.5}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	var resp generateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Image != "data:image/png;base64,iVBOR" {
		t.Errorf("image: got %q", resp.Image)
	}
	if resp.Prompt != "P" {
		t.Errorf("prompt: got %q, want %q", resp.Prompt, "P")
	}
	if backend.generateCalls != 1 {
		t.Errorf("backend called %d times, want exactly 1", backend.generateCalls)
	}
	if backend.lastReq.NumInferenceSteps != 30 || backend.lastReq.GuidanceScale != 8.5 {
		t.Errorf("forwarded params: got %+v", backend.lastReq)
	}
}

func TestGenerate_AppliesDefaults(t *testing.T) {
	backend := &stubBackend{result: &diffusion.GeneratedImage{Image: "data:x", Prompt: "p"}}
	api := newTestAPI(t, backend)

	rr := postGenerate(t, api, `{"prompt":"p"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	got := backend.lastReq
	if got.NegativePrompt != "blurry, low quality, distorted" {
		t.Errorf("negative prompt default: got %q", got.NegativePrompt)
	}
	if got.NumInferenceSteps != 25 {
		t.Errorf("steps default: got %d, want 25", got.NumInferenceSteps)
	}
	if got.GuidanceScale != 7.5 {
		t.Errorf("guidance default: got %v, want 7.5", got.GuidanceScale)
	}
	if got.Width != 512 || got.Height != 512 {
		t.Errorf("size default: got %dx%d, want 512x512", got.Width, got.Height)
	}
}

func TestGenerate_TrimsPromptBeforeForwarding(t *testing.T) {
	backend := &stubBackend{result: &diffusion.GeneratedImage{Image: "data:x", Prompt: "p"}}
	api := newTestAPI(t, backend)

	postGenerate(t, api, `{"prompt":"  a red fox  "}`)

	if backend.lastReq.Prompt != "a red fox" {
		t.Errorf("forwarded prompt: got %q, want trimmed", backend.lastReq.Prompt)
	}
}

func TestGenerate_BackendDetailIsRelayed(t *testing.T) {
	backend := &stubBackend{
		err: &diffusion.APIError{StatusCode: http.StatusServiceUnavailable, Detail: "Model overloaded"},
	}
	api := newTestAPI(t, backend)

	rr := postGenerate(t, api, `{"prompt":"p"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rr.Code)
	}
	if detail := decodeDetail(t, rr); detail != "Model overloaded" {
		t.Errorf("detail: got %q, want %q", detail, "Model overloaded")
	}
}

func TestGenerate_TransportMessageIsRelayed(t *testing.T) {
	backend := &stubBackend{err: errors.New("Network Error")}
	api := newTestAPI(t, backend)

	rr := postGenerate(t, api, `{"prompt":"p"}`)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", rr.Code)
	}
	if detail := decodeDetail(t, rr); detail != "Network Error" {
		t.Errorf("detail: got %q, want %q", detail, "Network Error")
	}
}

func TestGenerate_ParameterValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "steps below minimum",
			body:       `{"prompt":"p","num_inference_steps":9}`,
			wantDetail: "num_inference_steps must be between 10 and 50.",
		},
		{
			name:       "steps above maximum",
			body:       `{"prompt":"p","num_inference_steps":51}`,
			wantDetail: "num_inference_steps must be between 10 and 50.",
		},
		{
			name:       "guidance above maximum",
			body:       `{"prompt":"p","guidance_scale":20.5}`,
			wantDetail: "guidance_scale must be between 1 and 20.",
		},
		{
			name:       "guidance off the half-step grid",
			body:       `{"prompt":"p","guidance_scale":7.3}`,
			wantDetail: "guidance_scale must be a multiple of 0.5.",
		},
		{
			name:       "width not divisible by 8",
			body:       `{"prompt":"p","width":500,"height":512}`,
			wantDetail: "width and height must be divisible by 8 (e.g., 512, 768).",
		},
		{
			name:       "width out of range",
			body:       `{"prompt":"p","width":2048,"height":512}`,
			wantDetail: "width and height must be between 256 and 1024.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{}
			api := newTestAPI(t, backend)

			rr := postGenerate(t, api, tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
			if detail := decodeDetail(t, rr); detail != tt.wantDetail {
				t.Errorf("detail: got %q, want %q", detail, tt.wantDetail)
			}
			if backend.generateCalls != 0 {
				t.Errorf("backend called %d times, want 0", backend.generateCalls)
			}
		})
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	backend := &stubBackend{}
	api := newTestAPI(t, backend)

	rr := postGenerate(t, api, `{"prompt": not json`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
	if backend.generateCalls != 0 {
		t.Errorf("backend called %d times, want 0", backend.generateCalls)
	}
}

func TestGenerate_EchoesRequestID(t *testing.T) {
	backend := &stubBackend{result: &diffusion.GeneratedImage{Image: "data:x", Prompt: "p"}}
	api := newTestAPI(t, backend)

	handler := middleware.RequestID(http.HandlerFunc(api.Generate))
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"p"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp generateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID == "" {
		t.Fatal("request_id must be set")
	}
	if resp.RequestID != rr.Header().Get("X-Request-ID") {
		t.Errorf("request_id %q should match the X-Request-ID header %q",
			resp.RequestID, rr.Header().Get("X-Request-ID"))
	}
}
