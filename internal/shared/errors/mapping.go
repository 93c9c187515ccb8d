package errors

import (
	"errors"

	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

// Extender is implemented by errors that contribute extension members to the
// problem document, such as the list of pets blocking an order.
type Extender interface {
	ProblemExtensions() map[string]any
}

// FromError maps an application error to its problem document. Errors that
// carry no apperr kind become 500s without leaking their message.
func FromError(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	template, ok := byKind[apperr.KindOf(err)]
	if !ok {
		return ErrInternal.WithDetail("unexpected error")
	}
	problem = template.WithDetail(err.Error())
	var ext Extender
	if errors.As(err, &ext) {
		for key, value := range ext.ProblemExtensions() {
			problem = problem.WithExtension(key, value)
		}
	}
	return problem
}
