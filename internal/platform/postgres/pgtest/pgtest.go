//go:build integration

// Package pgtest starts a disposable PostgreSQL for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/pet-marketplace/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

// Start runs a migrated PostgreSQL container that is terminated when the test ends.
func Start(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("marketplace_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			_ = sqlDB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	})
	return db
}

// Truncate empties every marketplace table.
func Truncate(t *testing.T, db *gorm.DB) {
	t.Helper()
	stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(migrations.Tables(), ", "))
	require.NoError(t, db.Exec(stmt).Error)
}

// SeedUser inserts a user with a profile located in city.
func SeedUser(t *testing.T, db *gorm.DB, id, city string, roles ...string) {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{"customer"}
	}
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, name, email, image, roles, password_hash, banned, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, '', false, ?, ?)`,
		id, strings.ToUpper(id[:1])+id[1:], id+"@example.test", pq.StringArray(roles), now, now,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO profiles (user_id, bio, phone_number, address_city, seller_rating, seller_verified)
		 VALUES (?, '', '', ?, 0, false)`,
		id, city,
	).Error)
}
