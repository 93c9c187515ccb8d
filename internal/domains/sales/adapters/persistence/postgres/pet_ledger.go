package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var _ ports.PetLedger = (*PetLedger)(nil)

// PetLedger locks and flips pet rows on behalf of orders.
type PetLedger struct {
	db *gorm.DB
}

func NewPetLedger(db *gorm.DB) *PetLedger {
	return &PetLedger{db: db}
}

// LockPets takes row locks in id order so concurrent orders over
// overlapping pets queue instead of deadlocking.
func (l *PetLedger) LockPets(ctx context.Context, ids []int64) ([]domain.PetSummary, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("postgres pet ledger not configured")
	}
	return loadPetSummaries(platformpostgres.Conn(ctx, l.db), ids, true)
}

// TransitionPets moves pets currently in one of from to status to and bumps
// their version, so owner edits started before the move fail their version
// check.
func (l *PetLedger) TransitionPets(ctx context.Context, ids []int64, from []catalogdomain.Status, to catalogdomain.Status) (int64, error) {
	if l == nil || l.db == nil {
		return 0, errors.New("postgres pet ledger not configured")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	query := platformpostgres.Conn(ctx, l.db).Table("pets").Where("id IN ?", ids)
	if len(from) > 0 {
		statuses := make([]string, len(from))
		for i, s := range from {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	result := query.Updates(map[string]any{
		"status":     string(to),
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
