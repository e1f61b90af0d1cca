// Package response writes the API's JSON envelope from plain
// http.Handler code (middleware, health endpoints). Handlers going
// through pkg/ctx use the Context helpers instead; both produce the
// same envelope shape.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Pagination describes one page of a collection result.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes page metadata from a total count.
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return p
}

// Success answers 200 with data in the envelope.
func Success(w http.ResponseWriter, data any) {
	write(w, envelope{Status: http.StatusOK, Data: data})
}

// Paginated answers 200 with items and their page metadata.
func Paginated(w http.ResponseWriter, items any, pagination Pagination) {
	write(w, envelope{
		Status: http.StatusOK,
		Data:   map[string]any{"items": items, "pagination": pagination},
	})
}

// Error answers with a message-only envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, envelope{Status: status, Message: message})
}

// Unauthorized answers 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden answers 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

func write(w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
