package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/favorites/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/page"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

var _ ports.Service = (*Service)(nil)

// Service flips and lists a user's favorite pets.
type Service struct {
	repo ports.Repository
	tx   transaction.Manager
}

func NewService(repo ports.Repository, tx transaction.Manager) *Service {
	if tx == nil {
		tx = transaction.None
	}
	return &Service{repo: repo, tx: tx}
}

// Toggle removes the favorite when present and adds it otherwise. Two
// parallel toggles by the same user may both flip.
func (s *Service) Toggle(ctx context.Context, principal authz.Principal, petID int64) (domain.ToggleResult, error) {
	if err := authz.RequireUser(principal); err != nil {
		return "", err
	}
	var result domain.ToggleResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requirePet(ctx, petID); err != nil {
			return err
		}
		exists, err := s.repo.Exists(ctx, principal.UserID, petID)
		if err != nil {
			return err
		}
		if exists {
			result = domain.Removed
			return s.repo.Remove(ctx, principal.UserID, petID)
		}
		result = domain.Added
		return s.repo.Add(ctx, principal.UserID, petID)
	})
	if err != nil {
		return "", mapError(err)
	}
	return result, nil
}

func (s *Service) IsFavorite(ctx context.Context, principal authz.Principal, petID int64) (bool, error) {
	if err := authz.RequireUser(principal); err != nil {
		return false, err
	}
	exists, err := s.repo.Exists(ctx, principal.UserID, petID)
	return exists, mapError(err)
}

// List pages through the user's favorites. The total ignores the window.
func (s *Service) List(ctx context.Context, principal authz.Principal, req page.Request) (page.Result[domain.FavoritePet], error) {
	if err := authz.RequireUser(principal); err != nil {
		return page.Result[domain.FavoritePet]{}, err
	}
	req = req.Normalize()
	favorites, total, err := s.repo.List(ctx, principal.UserID, req.Offset(), req.Limit())
	if err != nil {
		return page.Result[domain.FavoritePet]{}, mapError(err)
	}
	for i := range favorites {
		if favorites[i].Images == nil {
			favorites[i].Images = []string{}
		}
	}
	return page.NewResult(favorites, total, req), nil
}

func (s *Service) requirePet(ctx context.Context, petID int64) error {
	ok, err := s.repo.PetExists(ctx, petID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ports.ErrPetNotFound, petID)
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrPetNotFound) {
		return apperr.Wrap(apperr.ErrNotFound, err)
	}
	return err
}
