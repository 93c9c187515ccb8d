package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog persistence adapter.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Search(ctx context.Context, criteria ports.SearchCriteria) ([]domain.Listing, int64, error) {
	var (
		listings []domain.Listing
		total    int64
	)
	err := r.db.View(ctx, func(s *memdb.State) error {
		ids := matchingIDs(s, criteria)
		total = int64(len(ids))
		ids = window(ids, criteria.Offset, criteria.Limit)
		listings = make([]domain.Listing, 0, len(ids))
		for _, id := range ids {
			listings = append(listings, toListing(s, s.Pets[id]))
		}
		return nil
	})
	return listings, total, err
}

// matchingIDs returns the ids of all matching pets, newest first.
func matchingIDs(s *memdb.State, c ports.SearchCriteria) []int64 {
	rows := make([]memdb.Pet, 0, len(s.Pets))
	for _, pet := range s.Pets {
		if matches(s, pet, c) {
			rows = append(rows, pet)
		}
	}
	slices.SortFunc(rows, func(a, b memdb.Pet) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func matches(s *memdb.State, pet memdb.Pet, c ports.SearchCriteria) bool {
	if c.Type != "" && pet.Type != string(c.Type) {
		return false
	}
	if c.MinPriceCents != nil && pet.PriceCents < *c.MinPriceCents {
		return false
	}
	if c.MaxPriceCents != nil && pet.PriceCents > *c.MaxPriceCents {
		return false
	}
	if c.Keyword != "" && !containsFold(pet.Name, c.Keyword) {
		return false
	}
	if c.Breed != "" {
		breed, ok := pet.Attributes[domain.AttributeBreed]
		if !ok || breed == nil || !containsFold(fmt.Sprint(breed), c.Breed) {
			return false
		}
	}
	if c.City != "" {
		profile, ok := s.Profiles[pet.OwnerID]
		if !ok || !containsFold(profile.AddressCity, c.City) {
			return false
		}
	}
	if c.OwnerID != "" && pet.OwnerID != c.OwnerID {
		return false
	}
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, domain.Status(pet.Status)) {
		return false
	}
	return true
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.View(ctx, func(s *memdb.State) error {
		pet, ok := s.Pets[id]
		if !ok {
			return ports.ErrNotFound
		}
		listing = toListing(s, pet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetForUpdate reads inside the caller's transaction, which already holds
// the store's write lock.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	var created domain.Pet
	err := r.db.Update(ctx, func(s *memdb.State) error {
		now := r.db.Now()
		row := toRow(pet)
		row.ID = s.NextID("pets")
		row.Version = 1
		row.CreatedAt, row.UpdatedAt = now, now
		s.Pets[row.ID] = row
		insertImages(s, row.ID, pet.Images)
		created = toDomain(row, imagesOf(s, row.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Repository) Update(ctx context.Context, pet *domain.Pet, expectedVersion int64, opts ports.UpdateOptions) (*domain.Pet, error) {
	var updated domain.Pet
	err := r.db.Update(ctx, func(s *memdb.State) error {
		stored, ok := s.Pets[pet.ID]
		if !ok {
			return ports.ErrNotFound
		}
		if stored.Version != expectedVersion {
			return ports.ErrVersionConflict
		}
		row := toRow(pet)
		row.CreatedAt = stored.CreatedAt
		row.UpdatedAt = r.db.Now()
		row.Version = stored.Version + 1
		if !opts.WriteStatus {
			row.Status = stored.Status
		}
		s.Pets[row.ID] = row
		if opts.ReplaceImages {
			deleteImages(s, row.ID)
			insertImages(s, row.ID, pet.Images)
		}
		updated = toDomain(row, imagesOf(s, row.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.Pets[id]; !ok {
			return ports.ErrNotFound
		}
		if referenced(s, id) {
			return fmt.Errorf("%w: pet %d", ports.ErrReferenced, id)
		}
		for key := range s.Favorites {
			if key.PetID == id {
				delete(s.Favorites, key)
			}
		}
		deleteImages(s, id)
		delete(s.Pets, id)
		return nil
	})
}

// referenced mirrors the foreign keys from order_items and bookings.
func referenced(s *memdb.State, petID int64) bool {
	for _, item := range s.OrderItems {
		if item.PetID == petID {
			return true
		}
	}
	for _, booking := range s.Bookings {
		if booking.PetID == petID {
			return true
		}
	}
	return false
}

func insertImages(s *memdb.State, petID int64, images []domain.Image) {
	for i, img := range images {
		imgID := s.NextID("pet_images")
		s.PetImages[imgID] = memdb.PetImage{ID: imgID, PetID: petID, URL: img.URL, IsPrimary: img.IsPrimary, Position: i}
	}
}

func deleteImages(s *memdb.State, petID int64) {
	for id, img := range s.PetImages {
		if img.PetID == petID {
			delete(s.PetImages, id)
		}
	}
}

func imagesOf(s *memdb.State, petID int64) []domain.Image {
	rows := make([]memdb.PetImage, 0)
	for _, img := range s.PetImages {
		if img.PetID == petID {
			rows = append(rows, img)
		}
	}
	slices.SortFunc(rows, func(a, b memdb.PetImage) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	images := make([]domain.Image, len(rows))
	for i, row := range rows {
		images[i] = domain.Image{URL: row.URL, IsPrimary: row.IsPrimary}
	}
	return images
}

func toListing(s *memdb.State, row memdb.Pet) domain.Listing {
	listing := domain.Listing{Pet: toDomain(row, imagesOf(s, row.ID))}
	if user, ok := s.Users[row.OwnerID]; ok {
		owner := &domain.OwnerSummary{ID: user.ID, Name: user.Name, Image: user.Image}
		if profile, ok := s.Profiles[user.ID]; ok {
			owner.City = profile.AddressCity
			owner.SellerVerified = profile.SellerVerified
		}
		listing.Owner = owner
	}
	return listing
}

func toRow(pet *domain.Pet) memdb.Pet {
	return memdb.Pet{
		ID:          pet.ID,
		OwnerID:     pet.OwnerID,
		Name:        pet.Name,
		Type:        string(pet.Type),
		Attributes:  maps.Clone(pet.Attributes),
		Description: pet.Description,
		PriceCents:  pet.PriceCents,
		Status:      string(pet.Status),
		Version:     pet.Version,
	}
}

func toDomain(row memdb.Pet, images []domain.Image) domain.Pet {
	attrs := maps.Clone(row.Attributes)
	if attrs == nil {
		attrs = map[string]any{}
	}
	return domain.Pet{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Name:        row.Name,
		Type:        domain.Type(row.Type),
		Attributes:  attrs,
		Description: row.Description,
		PriceCents:  row.PriceCents,
		Status:      domain.Status(row.Status),
		Version:     row.Version,
		Images:      images,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func window(ids []int64, offset, limit int) []int64 {
	if offset >= len(ids) {
		return nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return ids[offset:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
