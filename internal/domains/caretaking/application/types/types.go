package types

import "time"

type CreateServiceInput struct {
	Title          string
	Description    string
	Type           string
	BasePriceCents int64
	PriceUnit      string
}

type CreateBookingInput struct {
	ServiceID int64
	PetID     int64
	StartDate time.Time
	EndDate   time.Time
}

type UpdateBookingStatusInput struct {
	BookingID int64
	Status    string
}

type AddLogInput struct {
	BookingID   int64
	Title       string
	Description string
	ImageURL    string
}
