package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID               int64     `gorm:"primaryKey;column:id"`
	BuyerID          string    `gorm:"column:buyer_id"`
	PaymentRef       *string   `gorm:"column:payment_ref"`
	TotalAmountCents int64     `gorm:"column:total_amount_cents"`
	Status           string    `gorm:"column:status"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID                   int64 `gorm:"primaryKey;column:id"`
	OrderID              int64 `gorm:"column:order_id"`
	PetID                int64 `gorm:"column:pet_id"`
	PriceAtPurchaseCents int64 `gorm:"column:price_at_purchase_cents"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	record := orderRecord{
		BuyerID:          order.BuyerID,
		PaymentRef:       order.PaymentRef,
		TotalAmountCents: order.TotalAmountCents,
		Status:           string(order.Status),
	}
	if err := conn.Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	items := make([]orderItemRecord, len(order.Items))
	for i, item := range order.Items {
		items[i] = orderItemRecord{OrderID: record.ID, PetID: item.PetID, PriceAtPurchaseCents: item.PriceAtPurchaseCents}
	}
	if len(items) > 0 {
		if err := conn.Create(&items).Error; err != nil {
			return nil, err
		}
	}
	return toDomain(record, items, nil), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var record orderRecord
	if err := conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	orders, err := r.hydrate(conn, []orderRecord{record})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var record orderRecord
	if err := conn.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []orderItemRecord
	if err := conn.Where("order_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return toDomain(record, items, nil), nil
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var records []orderRecord
	if err := conn.Where("buyer_id = ?", buyerID).Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return r.hydrate(conn, records)
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status, paymentRef *string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	updates := map[string]any{"status": string(status), "updated_at": time.Now().UTC()}
	if paymentRef != nil {
		updates["payment_ref"] = *paymentRef
	}
	result := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// hydrate attaches items and pet summaries to the records, keeping their order.
func (r *Repository) hydrate(conn *gorm.DB, records []orderRecord) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(records))
	if len(records) == 0 {
		return orders, nil
	}
	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	var items []orderItemRecord
	if err := conn.Where("order_id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	petIDs := make([]int64, 0, len(items))
	itemsByOrder := make(map[int64][]orderItemRecord, len(records))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
		petIDs = append(petIDs, item.PetID)
	}
	pets, err := loadPetSummaries(conn, petIDs, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.PetSummary, len(pets))
	for _, p := range pets {
		byID[p.ID] = p
	}
	for _, rec := range records {
		orders = append(orders, *toDomain(rec, itemsByOrder[rec.ID], byID))
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrDuplicatePaymentRef
	}
	return err
}

func toDomain(rec orderRecord, items []orderItemRecord, pets map[int64]domain.PetSummary) *domain.Order {
	order := &domain.Order{
		ID:               rec.ID,
		BuyerID:          rec.BuyerID,
		PaymentRef:       rec.PaymentRef,
		TotalAmountCents: rec.TotalAmountCents,
		Status:           domain.Status(rec.Status),
		Items:            make([]domain.Item, 0, len(items)),
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	for _, item := range items {
		out := domain.Item{ID: item.ID, PetID: item.PetID, PriceAtPurchaseCents: item.PriceAtPurchaseCents}
		if pet, ok := pets[item.PetID]; ok {
			out.Pet = &pet
		}
		order.Items = append(order.Items, out)
	}
	return order
}

type petSummaryRow struct {
	ID           int64
	OwnerID      string
	Name         string
	Type         string
	Status       string
	PriceCents   int64
	PrimaryImage *string
}

func (p petSummaryRow) toDomain() domain.PetSummary {
	summary := domain.PetSummary{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		Type:       catalogdomain.Type(p.Type),
		Status:     catalogdomain.Status(p.Status),
		PriceCents: p.PriceCents,
	}
	if p.PrimaryImage != nil {
		summary.PrimaryImage = *p.PrimaryImage
	}
	return summary
}

// loadPetSummaries reads pets by id ordered by id, optionally with FOR UPDATE row locks.
func loadPetSummaries(conn *gorm.DB, ids []int64, lock bool) ([]domain.PetSummary, error) {
	if len(ids) == 0 {
		return []domain.PetSummary{}, nil
	}
	query := conn.Table("pets").
		Select("pets.id, pets.owner_id, pets.name, pets.type, pets.status, pets.price_cents, " +
			"(SELECT url FROM pet_images WHERE pet_images.pet_id = pets.id AND pet_images.is_primary LIMIT 1) AS primary_image").
		Where("pets.id IN ?", ids).
		Order("pets.id ASC")
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "pets"}})
	}
	var rows []petSummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	pets := make([]domain.PetSummary, len(rows))
	for i, row := range rows {
		pets[i] = row.toDomain()
	}
	return pets, nil
}
