package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var (
	_ ports.ServiceRepository = (*Repository)(nil)
	_ ports.BookingRepository = (*Repository)(nil)
	_ ports.PetOwnership      = (*Repository)(nil)
)

// Repository keeps caretaking rows in the shared in-memory store.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateService(ctx context.Context, service *domain.CareService) (*domain.CareService, error) {
	if service == nil {
		return nil, errors.New("service is nil")
	}
	var created *domain.CareService
	err := r.db.Update(ctx, func(s *memdb.State) error {
		row := memdb.CareService{
			ID:             s.NextID("care_services"),
			ProviderID:     service.ProviderID,
			Title:          service.Title,
			Description:    service.Description,
			Type:           string(service.Type),
			BasePriceCents: service.BasePriceCents,
			PriceUnit:      service.PriceUnit,
			IsActive:       service.IsActive,
			CreatedAt:      r.db.Now(),
		}
		s.CareServices[row.ID] = row
		created = toService(s, row)
		return nil
	})
	return created, err
}

func (r *Repository) GetService(ctx context.Context, id int64) (*domain.CareService, error) {
	var found *domain.CareService
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.CareServices[id]
		if !ok {
			return ports.ErrServiceNotFound
		}
		found = toService(s, row)
		return nil
	})
	return found, err
}

func (r *Repository) ListActiveServices(ctx context.Context, serviceType domain.ServiceType) ([]domain.CareService, error) {
	var out []domain.CareService
	err := r.db.View(ctx, func(s *memdb.State) error {
		rows := make([]memdb.CareService, 0, len(s.CareServices))
		for _, row := range s.CareServices {
			if !row.IsActive || (serviceType != "" && row.Type != string(serviceType)) {
				continue
			}
			rows = append(rows, row)
		}
		slices.SortFunc(rows, func(a, b memdb.CareService) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		out = make([]domain.CareService, 0, len(rows))
		for _, row := range rows {
			out = append(out, *toService(s, row))
		}
		return nil
	})
	return out, err
}

func (r *Repository) ServiceIDsByProvider(ctx context.Context, providerID string) ([]int64, error) {
	var ids []int64
	err := r.db.View(ctx, func(s *memdb.State) error {
		for _, row := range s.CareServices {
			if row.ProviderID == providerID {
				ids = append(ids, row.ID)
			}
		}
		slices.Sort(ids)
		return nil
	})
	return ids, err
}

func (r *Repository) CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if booking == nil {
		return nil, errors.New("booking is nil")
	}
	var created *domain.Booking
	err := r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.CareServices[booking.ServiceID]; !ok {
			return ports.ErrServiceNotFound
		}
		now := r.db.Now()
		row := memdb.Booking{
			ID:              s.NextID("bookings"),
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
		s.Bookings[row.ID] = row
		created = toBooking(s, row)
		return nil
	})
	return created, err
}

func (r *Repository) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var found *domain.Booking
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.Bookings[id]
		if !ok {
			return ports.ErrBookingNotFound
		}
		found = toBooking(s, row)
		return nil
	})
	return found, err
}

func (r *Repository) ListBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, func(b memdb.Booking) bool { return b.CustomerID == customerID })
}

func (r *Repository) ListBookingsByServices(ctx context.Context, serviceIDs []int64) ([]domain.Booking, error) {
	if len(serviceIDs) == 0 {
		return []domain.Booking{}, nil
	}
	return r.listBookings(ctx, func(b memdb.Booking) bool { return slices.Contains(serviceIDs, b.ServiceID) })
}

func (r *Repository) listBookings(ctx context.Context, keep func(memdb.Booking) bool) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.View(ctx, func(s *memdb.State) error {
		rows := make([]memdb.Booking, 0)
		for _, row := range s.Bookings {
			if keep(row) {
				rows = append(rows, row)
			}
		}
		slices.SortFunc(rows, func(a, b memdb.Booking) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		out = make([]domain.Booking, 0, len(rows))
		for _, row := range rows {
			out = append(out, *toBooking(s, row))
		}
		return nil
	})
	return out, err
}

func (r *Repository) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.db.Update(ctx, func(s *memdb.State) error {
		row, ok := s.Bookings[id]
		if !ok {
			return ports.ErrBookingNotFound
		}
		row.Status = string(status)
		row.UpdatedAt = r.db.Now()
		s.Bookings[id] = row
		return nil
	})
}

func (r *Repository) AddLog(ctx context.Context, log *domain.CareLog) (*domain.CareLog, error) {
	if log == nil {
		return nil, errors.New("care log is nil")
	}
	var created domain.CareLog
	err := r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.Bookings[log.BookingID]; !ok {
			return ports.ErrBookingNotFound
		}
		row := memdb.CareLog{
			ID:          s.NextID("care_logs"),
			BookingID:   log.BookingID,
			AuthorID:    log.AuthorID,
			Title:       log.Title,
			Description: log.Description,
			ImageURL:    log.ImageURL,
			LoggedAt:    r.db.Now(),
		}
		s.CareLogs[row.ID] = row
		created = toLog(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Repository) ListLogs(ctx context.Context, bookingID int64) ([]domain.CareLog, error) {
	var out []domain.CareLog
	err := r.db.View(ctx, func(s *memdb.State) error {
		rows := make([]memdb.CareLog, 0)
		for _, row := range s.CareLogs {
			if row.BookingID == bookingID {
				rows = append(rows, row)
			}
		}
		slices.SortFunc(rows, func(a, b memdb.CareLog) int {
			if c := b.LoggedAt.Compare(a.LoggedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		out = make([]domain.CareLog, 0, len(rows))
		for _, row := range rows {
			out = append(out, toLog(row))
		}
		return nil
	})
	return out, err
}

// OwnerOf reads the owner straight from the catalog pets table.
func (r *Repository) OwnerOf(ctx context.Context, petID int64) (string, error) {
	var owner string
	err := r.db.View(ctx, func(s *memdb.State) error {
		pet, ok := s.Pets[petID]
		if !ok {
			return ports.ErrPetNotFound
		}
		owner = pet.OwnerID
		return nil
	})
	return owner, err
}

func party(s *memdb.State, id string) *domain.Party {
	user, ok := s.Users[id]
	if !ok {
		return nil
	}
	return &domain.Party{ID: user.ID, Name: user.Name, Image: user.Image}
}

func toService(s *memdb.State, row memdb.CareService) *domain.CareService {
	return &domain.CareService{
		ID:             row.ID,
		ProviderID:     row.ProviderID,
		Title:          row.Title,
		Description:    row.Description,
		Type:           domain.ServiceType(row.Type),
		BasePriceCents: row.BasePriceCents,
		PriceUnit:      row.PriceUnit,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
		Provider:       party(s, row.ProviderID),
	}
}

func toBooking(s *memdb.State, row memdb.Booking) *domain.Booking {
	b := &domain.Booking{
		ID:              row.ID,
		CustomerID:      row.CustomerID,
		ServiceID:       row.ServiceID,
		PetID:           row.PetID,
		StartDate:       row.StartDate,
		EndDate:         row.EndDate,
		TotalPriceCents: row.TotalPriceCents,
		Status:          domain.BookingStatus(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		Customer:        party(s, row.CustomerID),
	}
	if svc, ok := s.CareServices[row.ServiceID]; ok {
		b.Service = toService(s, svc)
	}
	if pet, ok := s.Pets[row.PetID]; ok {
		b.Pet = &domain.PetSummary{ID: pet.ID, OwnerID: pet.OwnerID, Name: pet.Name, Type: pet.Type}
	}
	return b
}

func toLog(row memdb.CareLog) domain.CareLog {
	return domain.CareLog{
		ID:          row.ID,
		BookingID:   row.BookingID,
		AuthorID:    row.AuthorID,
		Title:       row.Title,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		LoggedAt:    row.LoggedAt,
	}
}
