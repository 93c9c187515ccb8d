package mapper

import (
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
)

type CreateServiceRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Type           string `json:"type"`
	BasePriceCents int64  `json:"basePriceCents"`
	PriceUnit      string `json:"priceUnit,omitempty"`
}

type CreateBookingRequest struct {
	ServiceID int64     `json:"serviceId"`
	PetID     int64     `json:"petId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

type AddLogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Service struct {
	ID             int64     `json:"id"`
	ProviderID     string    `json:"providerId"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Type           string    `json:"type"`
	BasePriceCents int64     `json:"basePriceCents"`
	PriceUnit      string    `json:"priceUnit"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Provider       *Party    `json:"provider,omitempty"`
}

type Pet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Booking struct {
	ID              int64     `json:"id"`
	CustomerID      string    `json:"customerId"`
	ServiceID       int64     `json:"serviceId"`
	PetID           int64     `json:"petId"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	TotalPriceCents int64     `json:"totalPriceCents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	Service         *Service  `json:"service,omitempty"`
	Pet             *Pet      `json:"pet,omitempty"`
	Customer        *Party    `json:"customer,omitempty"`
}

type Log struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"bookingId"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	LoggedAt    time.Time `json:"loggedAt"`
}

func (r CreateServiceRequest) ToInput() types.CreateServiceInput {
	return types.CreateServiceInput{
		Title:          r.Title,
		Description:    r.Description,
		Type:           r.Type,
		BasePriceCents: r.BasePriceCents,
		PriceUnit:      r.PriceUnit,
	}
}

func (r CreateBookingRequest) ToInput() types.CreateBookingInput {
	return types.CreateBookingInput{ServiceID: r.ServiceID, PetID: r.PetID, StartDate: r.StartDate, EndDate: r.EndDate}
}

func (r AddLogRequest) ToInput(bookingID int64) types.AddLogInput {
	return types.AddLogInput{BookingID: bookingID, Title: r.Title, Description: r.Description, ImageURL: r.ImageURL}
}

func fromParty(p *domain.Party) *Party {
	if p == nil {
		return nil
	}
	return &Party{ID: p.ID, Name: p.Name, Image: p.Image}
}

func FromService(s *domain.CareService) Service {
	return Service{
		ID:             s.ID,
		ProviderID:     s.ProviderID,
		Title:          s.Title,
		Description:    s.Description,
		Type:           string(s.Type),
		BasePriceCents: s.BasePriceCents,
		PriceUnit:      s.PriceUnit,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		Provider:       fromParty(s.Provider),
	}
}

func FromServices(services []domain.CareService) []Service {
	out := make([]Service, 0, len(services))
	for i := range services {
		out = append(out, FromService(&services[i]))
	}
	return out
}

func FromBooking(b *domain.Booking) Booking {
	out := Booking{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		ServiceID:       b.ServiceID,
		PetID:           b.PetID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		TotalPriceCents: b.TotalPriceCents,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		Customer:        fromParty(b.Customer),
	}
	if b.Service != nil {
		svc := FromService(b.Service)
		out.Service = &svc
	}
	if b.Pet != nil {
		out.Pet = &Pet{ID: b.Pet.ID, Name: b.Pet.Name, Type: b.Pet.Type}
	}
	return out
}

func FromBookings(bookings []domain.Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for i := range bookings {
		out = append(out, FromBooking(&bookings[i]))
	}
	return out
}

func FromLog(l *domain.CareLog) Log {
	return Log{
		ID:          l.ID,
		BookingID:   l.BookingID,
		AuthorID:    l.AuthorID,
		Title:       l.Title,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		LoggedAt:    l.LoggedAt,
	}
}

func FromLogs(logs []domain.CareLog) []Log {
	out := make([]Log, 0, len(logs))
	for i := range logs {
		out = append(out, FromLog(&logs[i]))
	}
	return out
}
