// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Download turns the current result's data URL back into file bytes and
// streams them as an attachment, so the browser's native save dialog
// handles the rest. The page posts the data URL through a plain HTML form;
// there is nothing to download until a generation has succeeded, and in
// that case the form field is empty and this returns 400 without a body
// the browser would save.
func (a *API) Download(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed download request.")
		return
	}

	raw := strings.TrimSpace(r.FormValue("image"))
	if raw == "" {
		writeDetail(w, http.StatusBadRequest, "Nothing to download yet. Generate an image first.")
		return
	}

	data, contentType, err := decodeDataURL(raw)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed image payload.")
		return
	}

	filename := fmt.Sprintf("sd-studio-%d%s", time.Now().Unix(), extensionFor(contentType))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// decodeDataURL parses a base64 image data URL ("data:image/png;base64,...")
// and returns the raw bytes and MIME type. Only image types are accepted.
func decodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}

	const marker = ";base64,"
	idx := strings.Index(rest, marker)
	if idx < 0 {
		return nil, "", fmt.Errorf("missing base64 payload")
	}

	contentType := rest[:idx]
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unsupported content type %q", contentType)
	}

	data, err := base64.StdEncoding.DecodeString(rest[idx+len(marker):])
	if err != nil {
		return nil, "", fmt.Errorf("decode base64: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}

	return data, contentType, nil
}

// extensionFor picks the download file extension for a MIME type. The
// backend emits PNG; the others cover alternative backends.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
