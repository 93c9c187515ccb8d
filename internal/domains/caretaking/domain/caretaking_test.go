package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotePrice(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		end  time.Time
		want int64
	}{
		{"twelve hours charge one day", start.Add(12 * time.Hour), 1000},
		{"exactly one day", start.Add(24 * time.Hour), 1000},
		{"25 hours charge two days", start.Add(25 * time.Hour), 2000},
		{"three days", start.Add(72 * time.Hour), 3000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := QuotePrice(1000, start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.want, price)
		})
	}

	_, err := QuotePrice(1000, start, start)
	require.ErrorIs(t, err, ErrInvalidDateRange)
	_, err = QuotePrice(1000, start, start.Add(-time.Hour))
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestQuotePriceRejectsOverflow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := QuotePrice(math.MaxInt64/2, start, start.Add(72*time.Hour))
	require.ErrorIs(t, err, ErrPriceOverflow)

	_, err = QuotePrice(1, start, start.AddDate(500, 0, 0))
	require.ErrorIs(t, err, ErrPriceOverflow, "range longer than a time.Duration")

	price, err := QuotePrice(math.MaxInt64/3, start, start.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/3)*3, price)
}

func TestBookingTransitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransitionTo(BookingAccepted))
	assert.True(t, BookingPending.CanTransitionTo(BookingCancelled))
	assert.True(t, BookingAccepted.CanTransitionTo(BookingInProgress))
	assert.True(t, BookingInProgress.CanTransitionTo(BookingCompleted))

	assert.False(t, BookingPending.CanTransitionTo(BookingCompleted))
	assert.False(t, BookingCompleted.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingRejected.CanTransitionTo(BookingAccepted))
	assert.False(t, BookingAccepted.CanTransitionTo(BookingAccepted))
}

func TestNewCareServiceDefaults(t *testing.T) {
	svc, err := NewCareService("carol", "  Dog hotel ", "", ServiceBoarding, 5000, "")
	require.NoError(t, err)
	assert.Equal(t, "Dog hotel", svc.Title)
	assert.Equal(t, DefaultPriceUnit, svc.PriceUnit)
	assert.True(t, svc.IsActive)

	_, err = NewCareService("carol", " ", "", ServiceBoarding, 5000, "")
	require.ErrorIs(t, err, ErrEmptyTitle)
	_, err = NewCareService("carol", "Spa", "", "massage", 5000, "")
	require.ErrorIs(t, err, ErrInvalidServiceType)
	_, err = NewCareService("carol", "Spa", "", ServiceGrooming, -1, "")
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestNewBookingRequiresActiveService(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewBooking("dave", &CareService{ID: 1, BasePriceCents: 100}, 1, start, start.Add(time.Hour))
	require.ErrorIs(t, err, ErrServiceInactive)

	b, err := NewBooking("dave", &CareService{ID: 1, BasePriceCents: 100, IsActive: true}, 1, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, BookingPending, b.Status)
	assert.Equal(t, int64(100), b.TotalPriceCents)
}

func TestParseViewerRole(t *testing.T) {
	role, err := ParseViewerRole("")
	require.NoError(t, err)
	assert.Equal(t, ViewAsCustomer, role)

	role, err = ParseViewerRole("Provider")
	require.NoError(t, err)
	assert.Equal(t, ViewAsProvider, role)

	_, err = ParseViewerRole("admin")
	require.ErrorIs(t, err, ErrInvalidViewerRole)
}
