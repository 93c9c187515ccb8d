package application

import (
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrOwnPet),
		errors.Is(err, domain.ErrEmptyPaymentRef):
		return apperr.Wrap(apperr.ErrValidation, err)
	case errors.Is(err, domain.ErrPetUnavailable),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, ports.ErrDuplicatePaymentRef),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return apperr.Wrap(apperr.ErrConflict, err)
	case errors.Is(err, ports.ErrNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err)
	}
	return err
}
