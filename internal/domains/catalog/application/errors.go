package application

import (
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrEmptyImageURL),
		errors.Is(err, domain.ErrStatusReserved):
		return apperr.Wrap(apperr.ErrValidation, err)
	case errors.Is(err, domain.ErrListingLocked),
		errors.Is(err, ports.ErrVersionConflict),
		errors.Is(err, ports.ErrReferenced):
		return apperr.Wrap(apperr.ErrConflict, err)
	case errors.Is(err, ports.ErrNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err)
	}
	return err
}
