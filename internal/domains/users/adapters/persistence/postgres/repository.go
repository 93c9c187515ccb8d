package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users and profiles in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           string         `gorm:"primaryKey;column:id"`
	Name         string         `gorm:"column:name"`
	Email        string         `gorm:"column:email"`
	Image        string         `gorm:"column:image"`
	Roles        pq.StringArray `gorm:"column:roles;type:text[]"`
	PasswordHash string         `gorm:"column:password_hash"`
	Banned       bool           `gorm:"column:banned"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

type profileRecord struct {
	UserID         string `gorm:"primaryKey;column:user_id"`
	Bio            string `gorm:"column:bio"`
	PhoneNumber    string `gorm:"column:phone_number"`
	AddressCity    string `gorm:"column:address_city"`
	SellerRating   int    `gorm:"column:seller_rating"`
	SellerVerified bool   `gorm:"column:seller_verified"`
}

func (profileRecord) TableName() string { return "profiles" }

// Create inserts the user and its empty profile.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	now := time.Now().UTC()
	record := toRecord(user)
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := conn.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	if err := conn.Create(&profileRecord{UserID: record.ID}).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record profileRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// SaveProfile upserts the editable profile columns.
func (r *Repository) SaveProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	record := profileRecord{
		UserID:         profile.UserID,
		Bio:            profile.Bio,
		PhoneNumber:    profile.PhoneNumber,
		AddressCity:    profile.AddressCity,
		SellerRating:   profile.SellerRating,
		SellerVerified: profile.SellerVerified,
	}
	err := platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio", "phone_number", "address_city"}),
		}).
		Create(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.GetProfile(ctx, profile.UserID)
}

func (r *Repository) findUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Image:        user.Image,
		Roles:        pq.StringArray(user.Roles),
		PasswordHash: user.PasswordHash,
		Banned:       user.Banned,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Image:        r.Image,
		Roles:        []string(r.Roles),
		PasswordHash: r.PasswordHash,
		Banned:       r.Banned,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r profileRecord) toDomain() *domain.Profile {
	return &domain.Profile{
		UserID:         r.UserID,
		Bio:            r.Bio,
		PhoneNumber:    r.PhoneNumber,
		AddressCity:    r.AddressCity,
		SellerRating:   r.SellerRating,
		SellerVerified: r.SellerVerified,
	}
}
