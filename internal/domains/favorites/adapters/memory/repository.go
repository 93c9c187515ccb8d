package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/favorites/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) PetExists(ctx context.Context, petID int64) (bool, error) {
	var ok bool
	err := r.db.View(ctx, func(s *memdb.State) error {
		_, ok = s.Pets[petID]
		return nil
	})
	return ok, err
}

func (r *Repository) Exists(ctx context.Context, userID string, petID int64) (bool, error) {
	var ok bool
	err := r.db.View(ctx, func(s *memdb.State) error {
		_, ok = s.Favorites[memdb.FavoriteKey{UserID: userID, PetID: petID}]
		return nil
	})
	return ok, err
}

func (r *Repository) Add(ctx context.Context, userID string, petID int64) error {
	return r.db.Update(ctx, func(s *memdb.State) error {
		key := memdb.FavoriteKey{UserID: userID, PetID: petID}
		if _, ok := s.Favorites[key]; ok {
			return nil
		}
		s.Favorites[key] = memdb.Favorite{UserID: userID, PetID: petID, CreatedAt: r.db.Now()}
		return nil
	})
}

func (r *Repository) Remove(ctx context.Context, userID string, petID int64) error {
	return r.db.Update(ctx, func(s *memdb.State) error {
		delete(s.Favorites, memdb.FavoriteKey{UserID: userID, PetID: petID})
		return nil
	})
}

func (r *Repository) List(ctx context.Context, userID string, offset, limit int) ([]domain.FavoritePet, int64, error) {
	var (
		out   []domain.FavoritePet
		total int64
	)
	err := r.db.View(ctx, func(s *memdb.State) error {
		rows := make([]memdb.Favorite, 0)
		for _, fav := range s.Favorites {
			if _, ok := s.Pets[fav.PetID]; ok && fav.UserID == userID {
				rows = append(rows, fav)
			}
		}
		slices.SortFunc(rows, func(a, b memdb.Favorite) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.PetID, a.PetID)
		})
		total = int64(len(rows))
		if offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[offset:min(offset+limit, len(rows))]
		}
		out = make([]domain.FavoritePet, 0, len(rows))
		for _, fav := range rows {
			pet := s.Pets[fav.PetID]
			out = append(out, domain.FavoritePet{
				PetID:       pet.ID,
				OwnerID:     pet.OwnerID,
				Name:        pet.Name,
				Type:        pet.Type,
				PriceCents:  pet.PriceCents,
				Status:      pet.Status,
				Images:      imagesOf(s, pet.ID),
				FavoritedAt: fav.CreatedAt,
			})
		}
		return nil
	})
	return out, total, err
}

func imagesOf(s *memdb.State, petID int64) []string {
	images := make([]memdb.PetImage, 0)
	for _, img := range s.PetImages {
		if img.PetID == petID {
			images = append(images, img)
		}
	}
	slices.SortFunc(images, func(a, b memdb.PetImage) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return urls
}
