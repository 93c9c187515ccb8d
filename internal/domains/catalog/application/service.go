package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/page"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

// Service orchestrates catalog use cases.
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

// Search runs a filtered, paginated catalog query. Without ViewAsOwner the
// search is public and only returns available pets whatever status was asked.
func (s *Service) Search(ctx context.Context, principal authz.Principal, filter types.SearchFilter) (types.SearchResult, error) {
	req := page.Request{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	criteria, err := s.resolveCriteria(principal, filter)
	if err != nil {
		return types.SearchResult{}, err
	}
	criteria.Offset = req.Offset()
	criteria.Limit = req.Limit()

	listings, total, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return types.SearchResult{}, mapError(err)
	}
	return page.NewResult(listings, total, req), nil
}

func (s *Service) resolveCriteria(principal authz.Principal, filter types.SearchFilter) (ports.SearchCriteria, error) {
	criteria := ports.SearchCriteria{
		MinPriceCents: filter.MinPriceCents,
		MaxPriceCents: filter.MaxPriceCents,
		Keyword:       strings.TrimSpace(filter.Keyword),
		Breed:         strings.TrimSpace(filter.Breed),
		City:          strings.TrimSpace(filter.City),
		OwnerID:       strings.TrimSpace(filter.OwnerID),
	}
	if raw := strings.TrimSpace(filter.Type); raw != "" {
		t, err := domain.ParseType(raw)
		if err != nil {
			return criteria, mapError(err)
		}
		criteria.Type = t
	}
	if lo := filter.MinPriceCents; lo != nil && *lo < 0 {
		return criteria, apperr.Validation("minPrice must not be negative")
	}
	if lo, hi := filter.MinPriceCents, filter.MaxPriceCents; lo != nil && hi != nil && *lo > *hi {
		return criteria, apperr.Validation("minPrice must not exceed maxPrice")
	}

	if !filter.ViewAsOwner {
		criteria.Statuses = []domain.Status{domain.StatusAvailable}
		return criteria, nil
	}

	if err := authz.RequireUser(principal); err != nil {
		return criteria, err
	}
	if criteria.OwnerID == "" {
		criteria.OwnerID = principal.UserID
	}
	resource := authz.Resource{Kind: "listings of", ID: criteria.OwnerID, Owners: []string{criteria.OwnerID}}
	if err := authz.Authorize(principal, authz.ActionViewOwnerListings, resource); err != nil {
		return criteria, err
	}
	if raw := strings.TrimSpace(filter.Status); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return criteria, mapError(err)
		}
		criteria.Statuses = []domain.Status{status}
	}
	return criteria, nil
}

func (s *Service) GetPet(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return listing, nil
}

// CreatePet stores a listing owned by the principal together with its images.
func (s *Service) CreatePet(ctx context.Context, principal authz.Principal, input types.CreatePetInput) (*domain.Listing, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	petType, err := domain.ParseType(input.Type)
	if err != nil {
		return nil, mapError(err)
	}
	pet, err := domain.NewPet(principal.UserID, input.Name, petType, input.PriceCents)
	if err != nil {
		return nil, mapError(err)
	}
	pet.Describe(input.Description)
	pet.ReplaceAttributes(input.Attributes)
	if input.Status != nil {
		if err := pet.SetStatusByOwner(domain.Status(*input.Status)); err != nil {
			return nil, mapError(err)
		}
	}
	if err := pet.ReplaceImages(input.ImageURLs); err != nil {
		return nil, mapError(err)
	}

	var listing *domain.Listing
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.repo.Create(ctx, pet)
		if err != nil {
			return err
		}
		listing, err = s.repo.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return listing, nil
}

// UpdatePet applies a partial update by the listing owner. Supplied images
// replace the stored set; the version is bumped on every write.
func (s *Service) UpdatePet(ctx context.Context, principal authz.Principal, input types.UpdatePetInput) (*domain.Listing, error) {
	var listing *domain.Listing
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, input.PetID)
		if err != nil {
			return err
		}
		pet := current.Pet
		if err := authz.Authorize(principal, authz.ActionUpdatePet, petResource(&pet)); err != nil {
			return err
		}
		if input.ExpectedVersion != nil && *input.ExpectedVersion != pet.Version {
			return fmt.Errorf("%w: expected version %d, stored %d", ports.ErrVersionConflict, *input.ExpectedVersion, pet.Version)
		}
		if err := applyPatch(&pet, input); err != nil {
			return err
		}
		opts := ports.UpdateOptions{ReplaceImages: input.ImageURLs != nil, WriteStatus: input.Status != nil}
		if _, err := s.repo.Update(ctx, &pet, current.Pet.Version, opts); err != nil {
			return err
		}
		listing, err = s.repo.GetByID(ctx, pet.ID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return listing, nil
}

func applyPatch(pet *domain.Pet, input types.UpdatePetInput) error {
	if input.Name != nil {
		if err := pet.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Type != nil {
		if err := pet.ChangeType(domain.Type(*input.Type)); err != nil {
			return err
		}
	}
	if input.PriceCents != nil {
		if err := pet.Reprice(*input.PriceCents); err != nil {
			return err
		}
	}
	if input.Description != nil {
		pet.Describe(*input.Description)
	}
	if input.Attributes != nil {
		pet.ReplaceAttributes(*input.Attributes)
	}
	if input.Status != nil {
		if err := pet.SetStatusByOwner(domain.Status(*input.Status)); err != nil {
			return err
		}
	}
	if input.ImageURLs != nil {
		if err := pet.ReplaceImages(*input.ImageURLs); err != nil {
			return err
		}
	}
	return nil
}

// DeletePet removes a listing, its images and favorites. Pets held by an
// order cannot be deleted.
func (s *Service) DeletePet(ctx context.Context, principal authz.Principal, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := authz.Authorize(principal, authz.ActionDeletePet, petResource(&current.Pet)); err != nil {
			return err
		}
		if current.Pet.Status.Locked() {
			return fmt.Errorf("%w: pet %d is %s", domain.ErrListingLocked, id, current.Pet.Status)
		}
		return s.repo.Delete(ctx, id)
	})
	return mapError(err)
}

func petResource(pet *domain.Pet) authz.Resource {
	return authz.Resource{Kind: "pet", ID: pet.ID, Owners: []string{pet.OwnerID}}
}

var _ ports.Service = (*Service)(nil)
