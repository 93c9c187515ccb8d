package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/memory"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	errorspkg "github.com/Apurer/pet-marketplace/internal/shared/errors"
)

var (
	seller = authz.Principal{UserID: "seller", Roles: []authz.Role{authz.RoleSeller}}
	buyer  = authz.Principal{UserID: "buyer", Roles: []authz.Role{authz.RoleCustomer}}
	other  = authz.Principal{UserID: "other", Roles: []authz.Role{authz.RoleCustomer}}
	admin  = authz.Principal{UserID: "admin", Roles: []authz.Role{authz.RoleAdmin}}
)

type fixture struct {
	db  *memdb.DB
	svc *Service
}

func newFixture(t *testing.T, ledger ports.PetLedger) *fixture {
	t.Helper()
	db := memdb.New()
	if ledger == nil {
		ledger = memory.NewPetLedger(db)
	}
	svc := NewService(memory.NewRepository(db), ledger, memory.NewIdempotencyStore(db), db)
	return &fixture{db: db, svc: svc}
}

func (f *fixture) seedPet(t *testing.T, id int64, name string, status catalogdomain.Status, price int64) {
	t.Helper()
	require.NoError(t, f.db.Update(context.Background(), func(s *memdb.State) error {
		s.Pets[id] = memdb.Pet{ID: id, OwnerID: "seller", Name: name, Type: "dog", Status: string(status), PriceCents: price, Version: 1}
		return nil
	}))
}

func (f *fixture) petStatus(t *testing.T, id int64) catalogdomain.Status {
	t.Helper()
	var status string
	require.NoError(t, f.db.View(context.Background(), func(s *memdb.State) error {
		status = s.Pets[id].Status
		return nil
	}))
	return catalogdomain.Status(status)
}

func (f *fixture) petVersion(t *testing.T, id int64) int64 {
	t.Helper()
	var version int64
	require.NoError(t, f.db.View(context.Background(), func(s *memdb.State) error {
		version = s.Pets[id].Version
		return nil
	}))
	return version
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.View(context.Background(), func(s *memdb.State) error {
		n = len(s.Orders) + len(s.OrderItems)
		return nil
	}))
	return n
}

func (f *fixture) placePaid(t *testing.T, ids ...int64) *domain.Order {
	t.Helper()
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: ids})
	require.NoError(t, err)
	order, err = f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: order.ID, Status: "paid"})
	require.NoError(t, err)
	return order
}

func TestCreateOrderReservesAllPets(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusAvailable, 250)

	order, err := f.svc.CreateOrder(context.Background(), buyer, types.CreateOrderInput{PetIDs: []int64{2, 1, 2}})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingPayment, order.Status)
	assert.Equal(t, int64(1250), order.TotalAmountCents)
	require.Len(t, order.Items, 2, "duplicate ids are collapsed")
	require.NotNil(t, order.Items[0].Pet)
	assert.Equal(t, catalogdomain.StatusPending, f.petStatus(t, 1))
	assert.Equal(t, catalogdomain.StatusPending, f.petStatus(t, 2))
}

func TestCreateOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusSold, 250)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1, 2}})
	require.ErrorIs(t, err, apperr.ErrConflict)
	problem := errorspkg.FromError(err)
	assert.Contains(t, problem.Extensions, "unavailablePets")
	assert.Equal(t, catalogdomain.StatusAvailable, f.petStatus(t, 1))
	assert.Zero(t, f.orderCount(t))

	_, err = f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1, 99}})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "99")
	assert.Zero(t, f.orderCount(t))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateOrder(ctx, seller, types.CreateOrderInput{PetIDs: []int64{1}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateOrder(ctx, authz.Anonymous, types.CreateOrderInput{PetIDs: []int64{1}})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, catalogdomain.StatusAvailable, f.petStatus(t, 1))
}

func TestCreateOrderWithOwnAndSoldPetConflicts(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusSold, 250)

	_, err := f.svc.CreateOrder(context.Background(), seller, types.CreateOrderInput{PetIDs: []int64{1, 2}})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.NotErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, catalogdomain.StatusAvailable, f.petStatus(t, 1))
	assert.Zero(t, f.orderCount(t))
}

func TestReservationBumpsPetVersion(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.petVersion(t, 1))

	_, err = f.svc.CancelOrder(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.petVersion(t, 1))
}

func TestSecondOrderForSamePetConflicts(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, other, types.CreateOrderInput{PetIDs: []int64{1}})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

type ledgerMock struct {
	mock.Mock
	ports.PetLedger
}

func (m *ledgerMock) TransitionPets(ctx context.Context, ids []int64, from []catalogdomain.Status, to catalogdomain.Status) (int64, error) {
	args := m.Called(ctx, ids, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateOrderRollsBackWhenReservationIsPartial(t *testing.T) {
	db := memdb.New()
	ledger := &ledgerMock{PetLedger: memory.NewPetLedger(db)}
	ledger.On("TransitionPets", mock.Anything, []int64{1, 2}, mock.Anything, catalogdomain.StatusPending).Return(int64(1), nil)
	f := &fixture{db: db, svc: NewService(memory.NewRepository(db), ledger, nil, db)}
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusAvailable, 250)

	_, err := f.svc.CreateOrder(context.Background(), buyer, types.CreateOrderInput{PetIDs: []int64{1, 2}})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Zero(t, f.orderCount(t))
	ledger.AssertExpectations(t)
}

func TestOrderKeepsPurchasePrice(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)

	require.NoError(t, f.db.Update(ctx, func(s *memdb.State) error {
		pet := s.Pets[1]
		pet.PriceCents = 5000
		s.Pets[1] = pet
		return nil
	}))

	fetched, err := f.svc.GetOrder(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), fetched.Items[0].PriceAtPurchaseCents)
	assert.Equal(t, int64(1000), fetched.TotalAmountCents)
}

func TestUpdateOrderStatusSideEffects(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()

	order := f.placePaid(t, 1)
	assert.Equal(t, domain.StatusPaid, order.Status)
	assert.Equal(t, catalogdomain.StatusSold, f.petStatus(t, 1))

	order, err := f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: order.ID, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	assert.Equal(t, catalogdomain.StatusAvailable, f.petStatus(t, 1))

	// a new owner flow puts the pet on hold; re-applying cancelled must not touch it
	require.NoError(t, f.db.Update(ctx, func(s *memdb.State) error {
		pet := s.Pets[1]
		pet.Status = string(catalogdomain.StatusCareStay)
		s.Pets[1] = pet
		return nil
	}))
	_, err = f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: order.ID, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, catalogdomain.StatusCareStay, f.petStatus(t, 1))

	_, err = f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: order.ID, Status: "paid"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: order.ID, Status: "teleported"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: 404, Status: "paid"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateOrderStatusRequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)

	_, err = f.svc.UpdateOrderStatus(ctx, buyer, types.UpdateOrderStatusInput{OrderID: order.ID, Status: "paid"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, catalogdomain.StatusPending, f.petStatus(t, 1))
}

func TestPaymentReference(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()
	first, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{2}})
	require.NoError(t, err)

	ref := "pay_1"
	paid, err := f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: first.ID, Status: "paid", PaymentRef: &ref})
	require.NoError(t, err)
	require.NotNil(t, paid.PaymentRef)
	assert.Equal(t, "pay_1", *paid.PaymentRef)

	_, err = f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: second.ID, Status: "paid", PaymentRef: &ref})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, catalogdomain.StatusPending, f.petStatus(t, 2), "failed update rolls back")

	// same status only records the reference
	newRef := "pay_2"
	again, err := f.svc.UpdateOrderStatus(ctx, admin, types.UpdateOrderStatusInput{OrderID: second.ID, Status: "pending_payment", PaymentRef: &newRef})
	require.NoError(t, err)
	assert.Equal(t, "pay_2", *again.PaymentRef)
	assert.Equal(t, domain.StatusPendingPayment, again.Status)
}

func TestGetAndListOrders(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()
	first, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{2}})
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, other, first.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.svc.GetOrder(ctx, admin, first.ID)
	require.NoError(t, err)
	_, err = f.svc.GetOrder(ctx, buyer, 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	orders, err := f.svc.ListOrders(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "newest first")

	orders, err = f.svc.ListOrders(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()
	pending, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}})
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(ctx, other, pending.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	cancelled, err := f.svc.CancelOrder(ctx, buyer, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, catalogdomain.StatusAvailable, f.petStatus(t, 1))

	paid := f.placePaid(t, 2)
	_, err = f.svc.CancelOrder(ctx, buyer, paid.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	f := newFixture(t, nil)
	f.seedPet(t, 1, "Rex", catalogdomain.StatusAvailable, 1000)
	f.seedPet(t, 2, "Tom", catalogdomain.StatusAvailable, 1000)
	ctx := context.Background()

	first, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1}, IdempotencyKey: "k1"})
	require.NoError(t, err)
	replay, err := f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{1, 1}, IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)

	_, err = f.svc.CreateOrder(ctx, buyer, types.CreateOrderInput{PetIDs: []int64{2}, IdempotencyKey: "k1"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, catalogdomain.StatusAvailable, f.petStatus(t, 2))

	// keys are scoped per buyer
	_, err = f.svc.CreateOrder(ctx, other, types.CreateOrderInput{PetIDs: []int64{2}, IdempotencyKey: "k1"})
	require.NoError(t, err)
}

func TestFingerprintIgnoresOrderAndDuplicates(t *testing.T) {
	a, err := FingerprintCreateOrder([]int64{3, 1, 1})
	require.NoError(t, err)
	b, err := FingerprintCreateOrder([]int64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := FingerprintCreateOrder([]int64{1})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMapErrorLeavesUnknownErrorsUnclassified(t *testing.T) {
	boom := errors.New("boom")
	assert.Nil(t, apperr.KindOf(mapError(boom)))
}
