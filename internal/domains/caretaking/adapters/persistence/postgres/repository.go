package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var (
	_ ports.ServiceRepository = (*Repository)(nil)
	_ ports.BookingRepository = (*Repository)(nil)
	_ ports.PetOwnership      = (*Repository)(nil)
)

// Repository persists caretaking rows in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type serviceRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	ProviderID     string    `gorm:"column:provider_id"`
	Title          string    `gorm:"column:title"`
	Description    string    `gorm:"column:description"`
	Type           string    `gorm:"column:type"`
	BasePriceCents int64     `gorm:"column:base_price_cents"`
	PriceUnit      string    `gorm:"column:price_unit"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (serviceRecord) TableName() string { return "care_services" }

type bookingRecord struct {
	ID              int64     `gorm:"primaryKey;column:id"`
	CustomerID      string    `gorm:"column:customer_id"`
	ServiceID       int64     `gorm:"column:service_id"`
	PetID           int64     `gorm:"column:pet_id"`
	StartDate       time.Time `gorm:"column:start_date"`
	EndDate         time.Time `gorm:"column:end_date"`
	TotalPriceCents int64     `gorm:"column:total_price_cents"`
	Status          string    `gorm:"column:status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (bookingRecord) TableName() string { return "bookings" }

type logRecord struct {
	ID          int64     `gorm:"primaryKey;column:id"`
	BookingID   int64     `gorm:"column:booking_id"`
	AuthorID    string    `gorm:"column:author_id"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	ImageURL    string    `gorm:"column:image_url"`
	LoggedAt    time.Time `gorm:"column:logged_at"`
}

func (logRecord) TableName() string { return "care_logs" }

type partyRow struct {
	ID    string
	Name  string
	Image string
}

type petRow struct {
	ID      int64
	OwnerID string
	Name    string
	Type    string
}

func (r *Repository) CreateService(ctx context.Context, service *domain.CareService) (*domain.CareService, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if service == nil {
		return nil, errors.New("service is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	record := serviceRecord{
		ProviderID:     service.ProviderID,
		Title:          service.Title,
		Description:    service.Description,
		Type:           string(service.Type),
		BasePriceCents: service.BasePriceCents,
		PriceUnit:      service.PriceUnit,
		IsActive:       service.IsActive,
		CreatedAt:      time.Now().UTC(),
	}
	if err := conn.Create(&record).Error; err != nil {
		return nil, err
	}
	services, err := r.hydrateServices(conn, []serviceRecord{record})
	if err != nil {
		return nil, err
	}
	return &services[0], nil
}

func (r *Repository) GetService(ctx context.Context, id int64) (*domain.CareService, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var record serviceRecord
	if err := conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrServiceNotFound
		}
		return nil, err
	}
	services, err := r.hydrateServices(conn, []serviceRecord{record})
	if err != nil {
		return nil, err
	}
	return &services[0], nil
}

func (r *Repository) ListActiveServices(ctx context.Context, serviceType domain.ServiceType) ([]domain.CareService, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	query := conn.Where("is_active = ?", true)
	if serviceType != "" {
		query = query.Where("type = ?", string(serviceType))
	}
	var records []serviceRecord
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return r.hydrateServices(conn, records)
}

func (r *Repository) ServiceIDsByProvider(ctx context.Context, providerID string) ([]int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var ids []int64
	err := platformpostgres.Conn(ctx, r.db).
		Model(&serviceRecord{}).
		Where("provider_id = ?", providerID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, errors.New("booking is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	now := time.Now().UTC()
	record := bookingRecord{
		CustomerID:      booking.CustomerID,
		ServiceID:       booking.ServiceID,
		PetID:           booking.PetID,
		StartDate:       booking.StartDate,
		EndDate:         booking.EndDate,
		TotalPriceCents: booking.TotalPriceCents,
		Status:          string(booking.Status),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := conn.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrServiceNotFound
		}
		return nil, err
	}
	bookings, err := r.hydrateBookings(conn, []bookingRecord{record})
	if err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

func (r *Repository) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var record bookingRecord
	if err := conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrBookingNotFound
		}
		return nil, err
	}
	bookings, err := r.hydrateBookings(conn, []bookingRecord{record})
	if err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

func (r *Repository) ListBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, "customer_id = ?", customerID)
}

func (r *Repository) ListBookingsByServices(ctx context.Context, serviceIDs []int64) ([]domain.Booking, error) {
	if len(serviceIDs) == 0 {
		return []domain.Booking{}, nil
	}
	return r.listBookings(ctx, "service_id IN ?", serviceIDs)
}

func (r *Repository) listBookings(ctx context.Context, cond string, arg any) ([]domain.Booking, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var records []bookingRecord
	if err := conn.Where(cond, arg).Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return r.hydrateBookings(conn, records)
}

func (r *Repository) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).
		Model(&bookingRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrBookingNotFound
	}
	return nil
}

func (r *Repository) AddLog(ctx context.Context, log *domain.CareLog) (*domain.CareLog, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if log == nil {
		return nil, errors.New("care log is nil")
	}
	record := logRecord{
		BookingID:   log.BookingID,
		AuthorID:    log.AuthorID,
		Title:       log.Title,
		Description: log.Description,
		ImageURL:    log.ImageURL,
		LoggedAt:    time.Now().UTC(),
	}
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrBookingNotFound
		}
		return nil, err
	}
	created := record.toDomain()
	return &created, nil
}

func (r *Repository) ListLogs(ctx context.Context, bookingID int64) ([]domain.CareLog, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []logRecord
	if err := platformpostgres.Conn(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("logged_at DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	logs := make([]domain.CareLog, 0, len(records))
	for _, rec := range records {
		logs = append(logs, rec.toDomain())
	}
	return logs, nil
}

func (r *Repository) OwnerOf(ctx context.Context, petID int64) (string, error) {
	if err := r.ensureDB(); err != nil {
		return "", err
	}
	var owners []string
	if err := platformpostgres.Conn(ctx, r.db).
		Table("pets").
		Where("id = ?", petID).
		Limit(1).
		Pluck("owner_id", &owners).Error; err != nil {
		return "", err
	}
	if len(owners) == 0 {
		return "", ports.ErrPetNotFound
	}
	return owners[0], nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres caretaking repository not configured")
	}
	return nil
}

func (r *Repository) hydrateServices(conn *gorm.DB, records []serviceRecord) ([]domain.CareService, error) {
	userIDs := make([]string, 0, len(records))
	for _, rec := range records {
		userIDs = append(userIDs, rec.ProviderID)
	}
	parties, err := loadParties(conn, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CareService, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain(parties[rec.ProviderID]))
	}
	return out, nil
}

// hydrateBookings attaches service, pet, and customer to each booking.
func (r *Repository) hydrateBookings(conn *gorm.DB, records []bookingRecord) ([]domain.Booking, error) {
	if len(records) == 0 {
		return []domain.Booking{}, nil
	}
	serviceIDs := make([]int64, 0, len(records))
	petIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		serviceIDs = append(serviceIDs, rec.ServiceID)
		petIDs = append(petIDs, rec.PetID)
	}
	var serviceRecords []serviceRecord
	if err := conn.Where("id IN ?", serviceIDs).Find(&serviceRecords).Error; err != nil {
		return nil, err
	}
	services, err := r.hydrateServices(conn, serviceRecords)
	if err != nil {
		return nil, err
	}
	servicesByID := make(map[int64]*domain.CareService, len(services))
	for i := range services {
		servicesByID[services[i].ID] = &services[i]
	}

	var pets []petRow
	if err := conn.Table("pets").Select("id, owner_id, name, type").Where("id IN ?", petIDs).Scan(&pets).Error; err != nil {
		return nil, err
	}
	petsByID := make(map[int64]*domain.PetSummary, len(pets))
	for _, p := range pets {
		petsByID[p.ID] = &domain.PetSummary{ID: p.ID, OwnerID: p.OwnerID, Name: p.Name, Type: p.Type}
	}

	customerIDs := make([]string, 0, len(records))
	for _, rec := range records {
		customerIDs = append(customerIDs, rec.CustomerID)
	}
	customers, err := loadParties(conn, customerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(records))
	for _, rec := range records {
		b := rec.toDomain()
		b.Service = servicesByID[rec.ServiceID]
		b.Pet = petsByID[rec.PetID]
		b.Customer = customers[rec.CustomerID]
		out = append(out, b)
	}
	return out, nil
}

func loadParties(conn *gorm.DB, ids []string) (map[string]*domain.Party, error) {
	parties := make(map[string]*domain.Party, len(ids))
	if len(ids) == 0 {
		return parties, nil
	}
	var rows []partyRow
	if err := conn.Table("users").Select("id, name, image").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		parties[row.ID] = &domain.Party{ID: row.ID, Name: row.Name, Image: row.Image}
	}
	return parties, nil
}

func (r serviceRecord) toDomain(provider *domain.Party) domain.CareService {
	return domain.CareService{
		ID:             r.ID,
		ProviderID:     r.ProviderID,
		Title:          r.Title,
		Description:    r.Description,
		Type:           domain.ServiceType(r.Type),
		BasePriceCents: r.BasePriceCents,
		PriceUnit:      r.PriceUnit,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		Provider:       provider,
	}
}

func (r bookingRecord) toDomain() domain.Booking {
	return domain.Booking{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		ServiceID:       r.ServiceID,
		PetID:           r.PetID,
		StartDate:       r.StartDate.UTC(),
		EndDate:         r.EndDate.UTC(),
		TotalPriceCents: r.TotalPriceCents,
		Status:          domain.BookingStatus(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r logRecord) toDomain() domain.CareLog {
	return domain.CareLog{
		ID:          r.ID,
		BookingID:   r.BookingID,
		AuthorID:    r.AuthorID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		LoggedAt:    r.LoggedAt,
	}
}
