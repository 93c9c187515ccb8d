package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/favorites/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists favorites in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type favoriteRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id"`
	PetID     int64     `gorm:"primaryKey;column:pet_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (favoriteRecord) TableName() string { return "user_favorites" }

type favoriteRow struct {
	PetID       int64
	OwnerID     string
	Name        string
	Type        string
	PriceCents  int64
	Status      string
	FavoritedAt time.Time
}

type imageRow struct {
	PetID int64
	URL   string
}

func (r *Repository) PetExists(ctx context.Context, petID int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := platformpostgres.Conn(ctx, r.db).Table("pets").Where("id = ?", petID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Exists(ctx context.Context, userID string, petID int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := platformpostgres.Conn(ctx, r.db).
		Model(&favoriteRecord{}).
		Where("user_id = ? AND pet_id = ?", userID, petID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Add(ctx context.Context, userID string, petID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := favoriteRecord{UserID: userID, PetID: petID, CreatedAt: time.Now().UTC()}
	return platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
}

func (r *Repository) Remove(ctx context.Context, userID string, petID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return platformpostgres.Conn(ctx, r.db).
		Where("user_id = ? AND pet_id = ?", userID, petID).
		Delete(&favoriteRecord{}).Error
}

func (r *Repository) List(ctx context.Context, userID string, offset, limit int) ([]domain.FavoritePet, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	base := func() *gorm.DB {
		return conn.Table("user_favorites").
			Joins("JOIN pets ON pets.id = user_favorites.pet_id").
			Where("user_favorites.user_id = ?", userID)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.FavoritePet{}, 0, nil
	}
	var rows []favoriteRow
	if err := base().
		Select("pets.id AS pet_id, pets.owner_id, pets.name, pets.type, pets.price_cents, pets.status, user_favorites.created_at AS favorited_at").
		Order("user_favorites.created_at DESC").
		Order("pets.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	images, err := loadImages(conn, rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.FavoritePet, 0, len(rows))
	for _, row := range rows {
		urls := images[row.PetID]
		if urls == nil {
			urls = []string{}
		}
		out = append(out, domain.FavoritePet{
			PetID:       row.PetID,
			OwnerID:     row.OwnerID,
			Name:        row.Name,
			Type:        row.Type,
			PriceCents:  row.PriceCents,
			Status:      row.Status,
			Images:      urls,
			FavoritedAt: row.FavoritedAt,
		})
	}
	return out, total, nil
}

func loadImages(conn *gorm.DB, rows []favoriteRow) (map[int64][]string, error) {
	byPet := make(map[int64][]string, len(rows))
	if len(rows) == 0 {
		return byPet, nil
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.PetID
	}
	var images []imageRow
	if err := conn.Table("pet_images").
		Select("pet_id, url").
		Where("pet_id IN ?", ids).
		Order("position ASC").
		Order("id ASC").
		Scan(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		byPet[img.PetID] = append(byPet[img.PetID], img.URL)
	}
	return byPet, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres favorites repository not configured")
	}
	return nil
}
