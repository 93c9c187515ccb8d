package application

import (
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidServiceType),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrInvalidBookingStatus),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrPriceOverflow),
		errors.Is(err, domain.ErrInvalidPet),
		errors.Is(err, domain.ErrInvalidViewerRole):
		return apperr.Wrap(apperr.ErrValidation, err)
	case errors.Is(err, domain.ErrIllegalTransition):
		return apperr.Wrap(apperr.ErrConflict, err)
	case errors.Is(err, domain.ErrServiceInactive),
		errors.Is(err, ports.ErrServiceNotFound),
		errors.Is(err, ports.ErrBookingNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err)
	}
	return err
}
