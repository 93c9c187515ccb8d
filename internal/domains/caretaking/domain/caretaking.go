package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ServiceType classifies what a caretaker offers.
type ServiceType string

const (
	ServiceBoarding     ServiceType = "boarding"
	ServiceGrooming     ServiceType = "grooming"
	ServiceTraining     ServiceType = "training"
	ServiceMedicalCheck ServiceType = "medical_check"
	ServiceWalking      ServiceType = "walking"
)

// BookingStatus tracks a booking from request to completion.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAccepted   BookingStatus = "accepted"
	BookingRejected   BookingStatus = "rejected"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// DefaultPriceUnit is used when a service does not name its unit.
const DefaultPriceUnit = "per_day"

const day = 24 * time.Hour

var (
	ErrEmptyTitle           = errors.New("title is required")
	ErrInvalidServiceType   = errors.New("service type is invalid")
	ErrNegativePrice        = errors.New("price must not be negative")
	ErrInvalidBookingStatus = errors.New("booking status is invalid")
	ErrInvalidDateRange     = errors.New("end date must be after start date")
	ErrPriceOverflow        = errors.New("booking price is out of range")
	ErrIllegalTransition    = errors.New("booking status transition is not allowed")
	// ErrInvalidPet means the pet is missing or owned by someone else.
	ErrInvalidPet        = errors.New("pet does not belong to the customer")
	ErrServiceInactive   = errors.New("service is not available")
	ErrInvalidViewerRole = errors.New("role must be customer or provider")
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingAccepted, BookingRejected, BookingCancelled},
	BookingAccepted:   {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

func ParseServiceType(raw string) (ServiceType, error) {
	t := ServiceType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case ServiceBoarding, ServiceGrooming, ServiceTraining, ServiceMedicalCheck, ServiceWalking:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidServiceType, raw)
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case BookingPending, BookingAccepted, BookingRejected, BookingInProgress, BookingCompleted, BookingCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBookingStatus, raw)
}

// CanTransitionTo reports whether a provider may move a booking from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Party is the public face of a user attached to caretaking rows.
type Party struct {
	ID    string
	Name  string
	Image string
}

// CareService is an offer published by a caretaker.
type CareService struct {
	ID             int64
	ProviderID     string
	Title          string
	Description    string
	Type           ServiceType
	BasePriceCents int64
	PriceUnit      string
	IsActive       bool
	CreatedAt      time.Time
	Provider       *Party
}

// NewCareService validates a new, active service offer.
func NewCareService(providerID, title, description string, serviceType ServiceType, basePriceCents int64, priceUnit string) (*CareService, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if _, err := ParseServiceType(string(serviceType)); err != nil {
		return nil, err
	}
	if basePriceCents < 0 {
		return nil, ErrNegativePrice
	}
	priceUnit = strings.TrimSpace(priceUnit)
	if priceUnit == "" {
		priceUnit = DefaultPriceUnit
	}
	return &CareService{
		ProviderID:     providerID,
		Title:          title,
		Description:    strings.TrimSpace(description),
		Type:           serviceType,
		BasePriceCents: basePriceCents,
		PriceUnit:      priceUnit,
		IsActive:       true,
	}, nil
}

// ChargedDays is the number of started days between start and end, at least one.
func ChargedDays(start, end time.Time) int64 {
	d := end.Sub(start)
	days := int64(d / day)
	if d%day != 0 {
		days++
	}
	return max(days, 1)
}

// QuotePrice is the booking price of the range at basePriceCents per day.
func QuotePrice(basePriceCents int64, start, end time.Time) (int64, error) {
	if !end.After(start) {
		return 0, ErrInvalidDateRange
	}
	if !start.Add(end.Sub(start)).Equal(end) {
		return 0, ErrPriceOverflow
	}
	days := ChargedDays(start, end)
	if basePriceCents > 0 && days > math.MaxInt64/basePriceCents {
		return 0, ErrPriceOverflow
	}
	return basePriceCents * days, nil
}

// PetSummary describes the pet in care.
type PetSummary struct {
	ID      int64
	OwnerID string
	Name    string
	Type    string
}

type Booking struct {
	ID              int64
	CustomerID      string
	ServiceID       int64
	PetID           int64
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents int64
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Service  *CareService
	Pet      *PetSummary
	Customer *Party
}

// NewBooking prices a pending booking of service for the given range.
func NewBooking(customerID string, service *CareService, petID int64, start, end time.Time) (*Booking, error) {
	if service == nil || !service.IsActive {
		return nil, ErrServiceInactive
	}
	price, err := QuotePrice(service.BasePriceCents, start, end)
	if err != nil {
		return nil, err
	}
	return &Booking{
		CustomerID:      customerID,
		ServiceID:       service.ID,
		PetID:           petID,
		StartDate:       start.UTC(),
		EndDate:         end.UTC(),
		TotalPriceCents: price,
		Status:          BookingPending,
	}, nil
}

// ProviderID is the owner of the booked service, empty when not loaded.
func (b *Booking) ProviderID() string {
	if b == nil || b.Service == nil {
		return ""
	}
	return b.Service.ProviderID
}

// CareLog is an immutable diary entry written by the provider during a booking.
type CareLog struct {
	ID          int64
	BookingID   int64
	AuthorID    string
	Title       string
	Description string
	ImageURL    string
	LoggedAt    time.Time
}

func NewCareLog(bookingID int64, authorID, title, description, imageURL string) (*CareLog, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return &CareLog{
		BookingID:   bookingID,
		AuthorID:    authorID,
		Title:       title,
		Description: strings.TrimSpace(description),
		ImageURL:    strings.TrimSpace(imageURL),
	}, nil
}

// ViewerRole selects which side of the bookings a user is looking at.
type ViewerRole string

const (
	ViewAsCustomer ViewerRole = "customer"
	ViewAsProvider ViewerRole = "provider"
)

func ParseViewerRole(raw string) (ViewerRole, error) {
	switch r := ViewerRole(strings.ToLower(strings.TrimSpace(raw))); r {
	case ViewAsCustomer, ViewAsProvider:
		return r, nil
	case "":
		return ViewAsCustomer, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidViewerRole, raw)
}
