package memory

import (
	"context"
	"errors"
	"slices"

	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps accounts and profiles in the shared memdb store.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	var created domain.User
	err := r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.Users[user.ID]; ok {
			return ports.ErrEmailTaken
		}
		for _, existing := range s.Users {
			if existing.Email == user.Email {
				return ports.ErrEmailTaken
			}
		}
		now := r.db.Now()
		row := memdb.User{
			ID:           user.ID,
			Name:         user.Name,
			Email:        user.Email,
			Image:        user.Image,
			Roles:        slices.Clone(user.Roles),
			PasswordHash: user.PasswordHash,
			Banned:       user.Banned,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.Users[row.ID] = row
		s.Profiles[row.ID] = memdb.Profile{UserID: row.ID}
		created = toUser(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.Users[id]
		if !ok {
			return ports.ErrNotFound
		}
		user = toUser(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.View(ctx, func(s *memdb.State) error {
		for _, row := range s.Users {
			if row.Email == email {
				user = toUser(row)
				return nil
			}
		}
		return ports.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.Profiles[userID]
		if !ok {
			return ports.ErrNotFound
		}
		profile = toProfile(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) SaveProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	var saved domain.Profile
	err := r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.Users[profile.UserID]; !ok {
			return ports.ErrNotFound
		}
		row := memdb.Profile{
			UserID:         profile.UserID,
			Bio:            profile.Bio,
			PhoneNumber:    profile.PhoneNumber,
			AddressCity:    profile.AddressCity,
			SellerRating:   profile.SellerRating,
			SellerVerified: profile.SellerVerified,
		}
		s.Profiles[row.UserID] = row
		saved = toProfile(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func toUser(row memdb.User) domain.User {
	return domain.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Image:        row.Image,
		Roles:        slices.Clone(row.Roles),
		PasswordHash: row.PasswordHash,
		Banned:       row.Banned,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toProfile(row memdb.Profile) domain.Profile {
	return domain.Profile{
		UserID:         row.UserID,
		Bio:            row.Bio,
		PhoneNumber:    row.PhoneNumber,
		AddressCity:    row.AddressCity,
		SellerRating:   row.SellerRating,
		SellerVerified: row.SellerVerified,
	}
}
