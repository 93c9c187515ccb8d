//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
	"github.com/Apurer/pet-marketplace/internal/platform/postgres/pgtest"
)

func newPet(t *testing.T, owner, name string, petType domain.Type, price int64, images ...string) *domain.Pet {
	t.Helper()
	pet, err := domain.NewPet(owner, name, petType, price)
	require.NoError(t, err)
	require.NoError(t, pet.ReplaceImages(images))
	return pet
}

func TestRepository_CreateSearchAndGet(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "alice", "Kraków", "seller")
	pgtest.SeedUser(t, db, "bob", "Gdańsk")
	repo := NewRepository(db)
	ctx := context.Background()

	beagle := newPet(t, "alice", "Rex", domain.TypeDog, 1000, "a.png", "b.png")
	beagle.ReplaceAttributes(map[string]any{"breed": "Beagle"})
	created, err := repo.Create(ctx, beagle)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	_, err = repo.Create(ctx, newPet(t, "bob", "Whiskers", domain.TypeCat, 500))
	require.NoError(t, err)

	listing, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, listing.Pet.Images, 2)
	assert.True(t, listing.Pet.Images[0].IsPrimary)
	assert.Equal(t, "Beagle", listing.Pet.Breed())
	require.NotNil(t, listing.Owner)
	assert.Equal(t, "Kraków", listing.Owner.City)

	byBreed, total, err := repo.Search(ctx, ports.SearchCriteria{Breed: "beag", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byBreed, 1)
	assert.Equal(t, created.ID, byBreed[0].Pet.ID)

	byCity, total, err := repo.Search(ctx, ports.SearchCriteria{City: "gdań", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Whiskers", byCity[0].Pet.Name)

	all, total, err := repo.Search(ctx, ports.SearchCriteria{Statuses: []domain.Status{domain.StatusAvailable}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 1)
	assert.Equal(t, "Whiskers", all[0].Pet.Name, "newest first")

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateIsVersionGuarded(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "alice", "Kraków", "seller")
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPet(t, "alice", "Rex", domain.TypeDog, 1000, "a.png", "b.png"))
	require.NoError(t, err)

	require.NoError(t, created.Rename("Rexy"))
	require.NoError(t, created.ReplaceImages([]string{"c.png"}))
	updated, err := repo.Update(ctx, created, 1, ports.UpdateOptions{ReplaceImages: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	listing, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rexy", listing.Pet.Name)
	require.Len(t, listing.Pet.Images, 1)
	assert.Equal(t, "c.png", listing.Pet.Images[0].URL)

	_, err = repo.Update(ctx, created, 1, ports.UpdateOptions{})
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	created.ID = 4242
	_, err = repo.Update(ctx, created, 2, ports.UpdateOptions{})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteRemovesFavoritesAndImages(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "alice", "Kraków", "seller")
	pgtest.SeedUser(t, db, "bob", "Gdańsk")
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPet(t, "alice", "Rex", domain.TypeDog, 1000, "a.png"))
	require.NoError(t, err)
	require.NoError(t, db.Exec("INSERT INTO user_favorites (user_id, pet_id, created_at) VALUES (?, ?, now())", "bob", created.ID).Error)

	require.NoError(t, repo.Delete(ctx, created.ID))

	var favorites, images int64
	require.NoError(t, db.Table("user_favorites").Count(&favorites).Error)
	require.NoError(t, db.Table("pet_images").Count(&images).Error)
	assert.Zero(t, favorites)
	assert.Zero(t, images)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ports.ErrNotFound)
}

func TestRepository_DeleteRefusesReferencedPet(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "alice", "Kraków", "seller")
	pgtest.SeedUser(t, db, "bob", "Gdańsk")
	repo := NewRepository(db)
	tx := platformpostgres.NewTxManager(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPet(t, "alice", "Rex", domain.TypeDog, 1000, "a.png"))
	require.NoError(t, err)
	var orderID int64
	require.NoError(t, db.Raw(
		`INSERT INTO orders (buyer_id, total_amount_cents, status, created_at, updated_at)
		 VALUES ('bob', 1000, 'cancelled', now(), now()) RETURNING id`,
	).Scan(&orderID).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO order_items (order_id, pet_id, price_at_purchase_cents) VALUES (?, ?, 1000)", orderID, created.ID,
	).Error)

	err = tx.WithinTx(ctx, func(ctx context.Context) error { return repo.Delete(ctx, created.ID) })
	require.ErrorIs(t, err, ports.ErrReferenced)

	listing, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, listing.Pet.Images, 1, "rolled back with the failed delete")
}

func TestRepository_GetForUpdate(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "alice", "Kraków", "seller")
	repo := NewRepository(db)
	tx := platformpostgres.NewTxManager(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newPet(t, "alice", "Rex", domain.TypeDog, 1000))
	require.NoError(t, err)
	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := repo.GetForUpdate(ctx, created.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Rex", listing.Pet.Name)
		return nil
	}))

	_, err = repo.GetForUpdate(ctx, 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
