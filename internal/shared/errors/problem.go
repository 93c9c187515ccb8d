// Package errors renders application errors as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"net/http"

	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

// ProblemDetail is the body of every error response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy carrying one more extension member. The
// receiver's map is never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

func problem(slug, title string, status int) ProblemDetail {
	return ProblemDetail{Type: "/problems/" + slug, Title: title, Status: status}
}

var (
	ErrValidation   = problem("validation-error", "Validation Error", http.StatusBadRequest)
	ErrBadRequest   = problem("bad-request", "Bad Request", http.StatusBadRequest)
	ErrUnauthorized = problem("unauthorized", "Unauthorized", http.StatusUnauthorized)
	ErrForbidden    = problem("forbidden", "Forbidden", http.StatusForbidden)
	ErrNotFound     = problem("not-found", "Resource Not Found", http.StatusNotFound)
	ErrConflict     = problem("conflict", "Conflict", http.StatusConflict)
	ErrInternal     = problem("internal-error", "Internal Server Error", http.StatusInternalServerError)
)

// byKind maps each apperr sentinel to its problem template.
var byKind = map[error]ProblemDetail{
	apperr.ErrValidation:      ErrValidation,
	apperr.ErrUnauthenticated: ErrUnauthorized,
	apperr.ErrForbidden:       ErrForbidden,
	apperr.ErrNotFound:        ErrNotFound,
	apperr.ErrConflict:        ErrConflict,
}
