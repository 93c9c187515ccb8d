package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPendingPayment, StatusPaid, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusPendingPayment, StatusShipped, false},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusRefunded, true},
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPaid, false},
		{StatusRefunded, StatusPaid, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPetEffect(t *testing.T) {
	effect, ok := PetEffect(StatusPaid)
	require.True(t, ok)
	assert.Equal(t, catalogdomain.StatusSold, effect)

	for _, s := range []Status{StatusCancelled, StatusRefunded} {
		effect, ok = PetEffect(s)
		require.True(t, ok)
		assert.Equal(t, catalogdomain.StatusAvailable, effect)
	}
	_, ok = PetEffect(StatusShipped)
	assert.False(t, ok)
}

func TestNewOrder(t *testing.T) {
	pets := []PetSummary{
		{ID: 1, OwnerID: "seller", Name: "Rex", Status: catalogdomain.StatusAvailable, PriceCents: 1000},
		{ID: 2, OwnerID: "seller", Name: "Tom", Status: catalogdomain.StatusAvailable, PriceCents: 250},
	}
	order, err := NewOrder("buyer", pets)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, order.Status)
	assert.Equal(t, int64(1250), order.TotalAmountCents)
	assert.Equal(t, []int64{1, 2}, order.PetIDs())

	_, err = NewOrder("seller", pets)
	require.ErrorIs(t, err, ErrOwnPet)

	_, err = NewOrder("buyer", nil)
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestNewOrderNamesUnavailablePets(t *testing.T) {
	pets := []PetSummary{
		{ID: 1, OwnerID: "seller", Name: "Rex", Status: catalogdomain.StatusAvailable},
		{ID: 2, OwnerID: "seller", Name: "Tom", Status: catalogdomain.StatusSold},
	}
	_, err := NewOrder("buyer", pets)
	require.ErrorIs(t, err, ErrPetUnavailable)

	var unavailable *UnavailablePetsError
	require.True(t, errors.As(err, &unavailable))
	require.Len(t, unavailable.Pets, 1)
	assert.Equal(t, "Tom", unavailable.Pets[0].Name)
	assert.Contains(t, err.Error(), "Tom (#2)")
	assert.Contains(t, unavailable.ProblemExtensions(), "unavailablePets")
}

func TestNewOrderReportsUnavailableBeforeOwnership(t *testing.T) {
	pets := []PetSummary{
		{ID: 1, OwnerID: "buyer", Name: "Mine", Status: catalogdomain.StatusAvailable},
		{ID: 2, OwnerID: "seller", Name: "Tom", Status: catalogdomain.StatusSold},
	}
	_, err := NewOrder("buyer", pets)
	require.ErrorIs(t, err, ErrPetUnavailable)
	assert.NotErrorIs(t, err, ErrOwnPet)
}

func TestNormalizePaymentRef(t *testing.T) {
	ref, err := NormalizePaymentRef(nil)
	require.NoError(t, err)
	assert.Nil(t, ref)

	raw := "  pay_123 "
	ref, err = NormalizePaymentRef(&raw)
	require.NoError(t, err)
	assert.Equal(t, "pay_123", *ref)

	blank := " "
	_, err = NormalizePaymentRef(&blank)
	require.ErrorIs(t, err, ErrEmptyPaymentRef)
}
