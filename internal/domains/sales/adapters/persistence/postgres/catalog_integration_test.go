//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/pet-marketplace/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/pet-marketplace/internal/domains/catalog/application"
	catalogtypes "github.com/Apurer/pet-marketplace/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
	"github.com/Apurer/pet-marketplace/internal/platform/postgres/pgtest"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

var sellerPrincipal = authz.Principal{UserID: "seller", Roles: []authz.Role{authz.RoleSeller}}

func newCatalog(db *gorm.DB) *catalogapp.Service {
	return catalogapp.NewService(catalogpostgres.NewRepository(db), platformpostgres.NewTxManager(db))
}

// holdReservation reserves petID in a transaction that stays open until
// release is closed. It returns once the pet row is locked and pending.
func holdReservation(t *testing.T, db *gorm.DB, petID int64, release <-chan struct{}) <-chan error {
	t.Helper()
	ledger := NewPetLedger(db)
	locked := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- platformpostgres.NewTxManager(db).WithinTx(context.Background(), func(ctx context.Context) error {
			if _, err := ledger.LockPets(ctx, []int64{petID}); err != nil {
				return err
			}
			available := []catalogdomain.Status{catalogdomain.StatusAvailable}
			if _, err := ledger.TransitionPets(ctx, []int64{petID}, available, catalogdomain.StatusPending); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	select {
	case <-locked:
	case err := <-done:
		t.Fatalf("reservation failed: %v", err)
	}
	return done
}

func petVersion(t *testing.T, db *gorm.DB, id int64) int64 {
	t.Helper()
	var version int64
	require.NoError(t, db.Raw(`SELECT version FROM pets WHERE id = ?`, id).Scan(&version).Error)
	return version
}

func TestCatalog_OwnerEditWaitsForReservation(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "seller", "Kraków", "seller")
	catalog := newCatalog(db)
	rex := seedPet(t, db, "seller", "Rex", 1200)

	release := make(chan struct{})
	reserved := holdReservation(t, db, rex, release)

	edited := make(chan error, 1)
	go func() {
		name := "Rexy"
		_, err := catalog.UpdatePet(context.Background(), sellerPrincipal, catalogtypes.UpdatePetInput{PetID: rex, Name: &name})
		edited <- err
	}()

	select {
	case err := <-edited:
		t.Fatalf("edit finished while the reservation held the row: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-reserved)
	require.NoError(t, <-edited)

	listing, err := catalog.GetPet(context.Background(), rex)
	require.NoError(t, err)
	assert.Equal(t, "Rexy", listing.Pet.Name)
	assert.Equal(t, catalogdomain.StatusPending, listing.Pet.Status)
	assert.Equal(t, int64(3), petVersion(t, db, rex))
}

func TestCatalog_StaleEditAfterReservationConflicts(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "seller", "Kraków", "seller")
	pgtest.SeedUser(t, db, "buyer", "Gdańsk")
	catalog := newCatalog(db)
	rex := seedPet(t, db, "seller", "Rex", 1200)

	_, err := newService(db).CreateOrder(context.Background(), customer("buyer"), types.CreateOrderInput{PetIDs: []int64{rex}})
	require.NoError(t, err)

	seen := int64(1)
	available := "available"
	_, err = catalog.UpdatePet(context.Background(), sellerPrincipal, catalogtypes.UpdatePetInput{PetID: rex, ExpectedVersion: &seen, Status: &available})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, string(catalogdomain.StatusPending), petStatus(t, db, rex))
}

func TestCatalog_DeleteWaitsForReservation(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "seller", "Kraków", "seller")
	catalog := newCatalog(db)
	rex := seedPet(t, db, "seller", "Rex", 1200)

	release := make(chan struct{})
	reserved := holdReservation(t, db, rex, release)

	deleted := make(chan error, 1)
	go func() {
		deleted <- catalog.DeletePet(context.Background(), sellerPrincipal, rex)
	}()
	time.Sleep(300 * time.Millisecond)
	close(release)
	require.NoError(t, <-reserved)
	require.ErrorIs(t, <-deleted, apperr.ErrConflict)
	assert.Equal(t, string(catalogdomain.StatusPending), petStatus(t, db, rex))
}

func TestCatalog_DeletePreviouslyOrderedPetConflicts(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "seller", "Kraków", "seller")
	pgtest.SeedUser(t, db, "buyer", "Gdańsk")
	catalog := newCatalog(db)
	sales := newService(db)
	ctx := context.Background()
	rex := seedPet(t, db, "seller", "Rex", 1200)

	order, err := sales.CreateOrder(ctx, customer("buyer"), types.CreateOrderInput{PetIDs: []int64{rex}})
	require.NoError(t, err)
	_, err = sales.CancelOrder(ctx, customer("buyer"), order.ID)
	require.NoError(t, err)
	require.Equal(t, string(catalogdomain.StatusAvailable), petStatus(t, db, rex))

	require.ErrorIs(t, catalog.DeletePet(ctx, sellerPrincipal, rex), apperr.ErrConflict)

	_, err = catalog.GetPet(ctx, rex)
	require.NoError(t, err)
	stored, err := sales.GetOrder(ctx, customer("buyer"), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
}
