package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists listings in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	ID          int64          `gorm:"primaryKey;column:id"`
	OwnerID     string         `gorm:"column:owner_id"`
	Name        string         `gorm:"column:name"`
	Type        string         `gorm:"column:type"`
	Attributes  map[string]any `gorm:"column:attributes;serializer:json"`
	Description string         `gorm:"column:description"`
	PriceCents  int64          `gorm:"column:price_cents"`
	Status      string         `gorm:"column:status"`
	Version     int64          `gorm:"column:version"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

type petImageRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	PetID     int64  `gorm:"column:pet_id"`
	URL       string `gorm:"column:url"`
	IsPrimary bool   `gorm:"column:is_primary"`
	Position  int    `gorm:"column:position"`
}

func (petImageRecord) TableName() string { return "pet_images" }

type ownerRow struct {
	ID             string
	Name           string
	Image          string
	AddressCity    *string
	SellerVerified *bool
}

var updatableColumns = []string{"name", "type", "attributes", "description", "price_cents", "version", "updated_at"}

// Search runs the count and the id page with the same predicates, then loads
// exactly the selected rows.
func (r *Repository) Search(ctx context.Context, criteria ports.SearchCriteria) ([]domain.Listing, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.filtered(ctx, criteria).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Listing{}, 0, nil
	}
	var ids []int64
	query := r.filtered(ctx, criteria).
		Order("pets.created_at DESC").
		Order("pets.id DESC").
		Offset(criteria.Offset)
	if criteria.Limit > 0 {
		query = query.Limit(criteria.Limit)
	}
	if err := query.Pluck("pets.id", &ids).Error; err != nil {
		return nil, 0, err
	}
	listings, err := r.load(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *Repository) filtered(ctx context.Context, c ports.SearchCriteria) *gorm.DB {
	q := platformpostgres.Conn(ctx, r.db).Model(&petRecord{})
	if c.City != "" {
		q = q.Joins("JOIN profiles ON profiles.user_id = pets.owner_id").
			Where("profiles.address_city ILIKE ?", likePattern(c.City))
	}
	if c.Type != "" {
		q = q.Where("pets.type = ?", string(c.Type))
	}
	if c.MinPriceCents != nil {
		q = q.Where("pets.price_cents >= ?", *c.MinPriceCents)
	}
	if c.MaxPriceCents != nil {
		q = q.Where("pets.price_cents <= ?", *c.MaxPriceCents)
	}
	if c.Keyword != "" {
		q = q.Where("pets.name ILIKE ?", likePattern(c.Keyword))
	}
	if c.Breed != "" {
		q = q.Where("pets.attributes->>? ILIKE ?", domain.AttributeBreed, likePattern(c.Breed))
	}
	if c.OwnerID != "" {
		q = q.Where("pets.owner_id = ?", c.OwnerID)
	}
	if len(c.Statuses) > 0 {
		statuses := make([]string, len(c.Statuses))
		for i, s := range c.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("pets.status IN ?", statuses)
	}
	return q
}

// load fetches pets, images and owners for ids and keeps the order of ids.
func (r *Repository) load(ctx context.Context, ids []int64) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var pets []petRecord
	if err := conn.Where("id IN ?", ids).Find(&pets).Error; err != nil {
		return nil, err
	}
	var images []petImageRecord
	if err := conn.Where("pet_id IN ?", ids).Order("position ASC").Order("id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	ownerIDs := make([]string, 0, len(pets))
	for _, p := range pets {
		ownerIDs = append(ownerIDs, p.OwnerID)
	}
	var owners []ownerRow
	if err := conn.Table("users").
		Select("users.id, users.name, users.image, profiles.address_city, profiles.seller_verified").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("users.id IN ?", ownerIDs).
		Scan(&owners).Error; err != nil {
		return nil, err
	}

	imagesByPet := make(map[int64][]domain.Image, len(ids))
	for _, img := range images {
		imagesByPet[img.PetID] = append(imagesByPet[img.PetID], domain.Image{URL: img.URL, IsPrimary: img.IsPrimary})
	}
	ownersByID := make(map[string]*domain.OwnerSummary, len(owners))
	for _, o := range owners {
		summary := &domain.OwnerSummary{ID: o.ID, Name: o.Name, Image: o.Image}
		if o.AddressCity != nil {
			summary.City = *o.AddressCity
		}
		if o.SellerVerified != nil {
			summary.SellerVerified = *o.SellerVerified
		}
		ownersByID[o.ID] = summary
	}
	petsByID := make(map[int64]petRecord, len(pets))
	for _, p := range pets {
		petsByID[p.ID] = p
	}

	listings := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		rec, ok := petsByID[id]
		if !ok {
			continue
		}
		listings = append(listings, domain.Listing{
			Pet:   rec.toDomain(imagesByPet[id]),
			Owner: ownersByID[rec.OwnerID],
		})
	}
	return listings, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	listings, err := r.load(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, ports.ErrNotFound
	}
	return &listings[0], nil
}

// GetForUpdate locks the pet row first so concurrent reservations and owner
// edits of the same pet run one after the other.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var locked petRecord
	err := platformpostgres.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		Take(&locked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("pet is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	record := toRecord(pet)
	record.ID = 0
	record.Version = 1
	if err := conn.Create(&record).Error; err != nil {
		return nil, err
	}
	if err := insertImages(conn, record.ID, pet.Images); err != nil {
		return nil, err
	}
	created := record.toDomain(pet.Images)
	return &created, nil
}

func (r *Repository) Update(ctx context.Context, pet *domain.Pet, expectedVersion int64, opts ports.UpdateOptions) (*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("pet is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	record := toRecord(pet)
	record.Version = expectedVersion + 1
	record.UpdatedAt = time.Now().UTC()
	columns := updatableColumns
	if opts.WriteStatus {
		columns = append(slices.Clone(updatableColumns), "status")
	}
	result := conn.Model(&record).
		Where("version = ?", expectedVersion).
		Select(columns).
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := conn.Model(&petRecord{}).Where("id = ?", pet.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	if opts.ReplaceImages {
		if err := conn.Where("pet_id = ?", pet.ID).Delete(&petImageRecord{}).Error; err != nil {
			return nil, err
		}
		if err := insertImages(conn, pet.ID, pet.Images); err != nil {
			return nil, err
		}
	}
	updated := record.toDomain(pet.Images)
	return &updated, nil
}

// Delete removes dependent rows before the pet itself.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	if err := conn.Exec("DELETE FROM user_favorites WHERE pet_id = ?", id).Error; err != nil {
		return err
	}
	if err := conn.Where("pet_id = ?", id).Delete(&petImageRecord{}).Error; err != nil {
		return err
	}
	result := conn.Delete(&petRecord{}, id)
	if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: pet %d", ports.ErrReferenced, id)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres pet repository not configured")
	}
	return nil
}

func insertImages(conn *gorm.DB, petID int64, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	records := make([]petImageRecord, len(images))
	for i, img := range images {
		records[i] = petImageRecord{PetID: petID, URL: img.URL, IsPrimary: img.IsPrimary, Position: i}
	}
	return conn.Create(&records).Error
}

func toRecord(pet *domain.Pet) petRecord {
	attrs := pet.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return petRecord{
		ID:          pet.ID,
		OwnerID:     pet.OwnerID,
		Name:        pet.Name,
		Type:        string(pet.Type),
		Attributes:  attrs,
		Description: pet.Description,
		PriceCents:  pet.PriceCents,
		Status:      string(pet.Status),
		Version:     pet.Version,
		CreatedAt:   pet.CreatedAt,
		UpdatedAt:   pet.UpdatedAt,
	}
}

func (r petRecord) toDomain(images []domain.Image) domain.Pet {
	if images == nil {
		images = []domain.Image{}
	}
	attrs := r.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return domain.Pet{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Type:        domain.Type(r.Type),
		Attributes:  attrs,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Status:      domain.Status(r.Status),
		Version:     r.Version,
		Images:      images,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
