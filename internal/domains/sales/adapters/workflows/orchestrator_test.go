package workflows

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	salesmemory "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/memory"
	salesapp "github.com/Apurer/pet-marketplace/internal/domains/sales/application"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

func TestBuildCheckoutWorkflowIDIsScopedToBuyer(t *testing.T) {
	input := types.CreateOrderInput{PetIDs: []int64{1}, IdempotencyKey: "  key-1 "}

	first := buildCheckoutWorkflowID("alice", input, "trace")
	again := buildCheckoutWorkflowID("alice", types.CreateOrderInput{IdempotencyKey: "key-1"}, "other")
	other := buildCheckoutWorkflowID("bob", input, "trace")

	assert.True(t, strings.HasPrefix(first, "order-checkout-idem-"))
	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
}

func TestBuildCheckoutWorkflowIDWithoutKeyUsesTrace(t *testing.T) {
	id := buildCheckoutWorkflowID("alice", types.CreateOrderInput{}, "abc")
	assert.Equal(t, "order-checkout-alice-abc", id)
}

func TestWorkflowTraceComponentFallsBack(t *testing.T) {
	assert.True(t, strings.HasPrefix(workflowTraceComponent(context.Background()), "fallback-"))
}

func TestInlineCheckoutDelegatesToService(t *testing.T) {
	db := memdb.New()
	require.NoError(t, db.Update(context.Background(), func(s *memdb.State) error {
		s.Pets[1] = memdb.Pet{ID: 1, OwnerID: "seller", Name: "Rex", Type: "dog", Status: string(catalogdomain.StatusAvailable), PriceCents: 500}
		return nil
	}))
	svc := salesapp.NewService(salesmemory.NewRepository(db), salesmemory.NewPetLedger(db), nil, db)
	checkout := NewInlineCheckout(svc)
	buyer := authz.Principal{UserID: "buyer", Roles: []authz.Role{authz.RoleCustomer}}

	order, err := checkout.PlaceOrder(context.Background(), buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, int64(500), order.TotalAmountCents)

	_, err = checkout.PlaceOrder(context.Background(), buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUnconfiguredOrchestratorsFail(t *testing.T) {
	_, err := (&TemporalCheckout{}).PlaceOrder(context.Background(), authz.Principal{}, types.CreateOrderInput{})
	require.Error(t, err)
	_, err = (&InlineCheckout{}).PlaceOrder(context.Background(), authz.Principal{}, types.CreateOrderInput{})
	require.Error(t, err)
}
