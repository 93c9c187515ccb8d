package application

import (
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/auth"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

// ErrBanned is returned when a banned account tries to log in.
var ErrBanned = errors.New("account is banned")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidRole):
		return apperr.Wrap(apperr.ErrValidation, err)
	case errors.Is(err, ports.ErrEmailTaken):
		return apperr.Wrap(apperr.ErrConflict, err)
	case errors.Is(err, ports.ErrNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err)
	case errors.Is(err, ports.ErrInvalidCredentials),
		errors.Is(err, ports.ErrSessionNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return apperr.Wrap(apperr.ErrUnauthenticated, err)
	case errors.Is(err, ErrBanned):
		return apperr.Wrap(apperr.ErrForbidden, err)
	}
	return err
}
