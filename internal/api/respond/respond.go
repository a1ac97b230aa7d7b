// Package respond provides shared JSON response utilities for API handlers.
package respond

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FieldError points at one bad value in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error shape for all API errors.
type ErrorResponse struct {
	Error struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Detail  string       `json:"detail,omitempty"`
		Fields  []FieldError `json:"fields,omitempty"`
	} `json:"error"`
}

// WriteJSON writes cached JSON bytes with ETag, X-Cache and Cache-Control
// headers. ttl becomes max-age.
func WriteJSON(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheHit bool) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("ETag", etag)
	h.Set("Vary", "Accept-Encoding")
	if cacheHit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}
	maxAge := int(ttl.Seconds())
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// WriteNotModified sends a 304 with the matching ETag.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends a structured JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message, "", nil)
}

// WriteErrorDetail sends a structured error with additional detail.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	writeError(w, status, code, message, detail, nil)
}

// WriteFieldErrors sends a structured error listing each rejected field.
func WriteFieldErrors(w http.ResponseWriter, status int, code, message string, fields []FieldError) {
	writeError(w, status, code, message, "", fields)
}

func writeError(w http.ResponseWriter, status int, code, message, detail string, fields []FieldError) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Detail = detail
	resp.Error.Fields = fields
	w.Header().Set("Cache-Control", "no-store")
	writeEncoded(w, status, resp)
}

// WriteJSONObject marshals v and writes it with no-store, for responses
// that differ on every request such as unseeded simulations.
func WriteJSONObject(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	writeEncoded(w, status, v)
}

// writeEncoded encodes before writing the status so an encoding failure is
// still reported as a 500.
func writeEncoded(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, `{"error":{"code":"ENCODE_FAILED","message":"Could not encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
