package memory

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps order idempotency keys next to the orders they point at,
// so a rolled back order also forgets its key.
type IdempotencyStore struct {
	db *memdb.DB
}

func NewIdempotencyStore(db *memdb.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get returns the stored record for the buyer's key, or nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, buyerID, key string) (*ports.IdempotencyRecord, error) {
	var record *ports.IdempotencyRecord
	err := s.db.View(ctx, func(st *memdb.State) error {
		if row, ok := st.OrderKeys[memdb.OrderKeyID{BuyerID: buyerID, Key: key}]; ok {
			record = toRecord(row)
		}
		return nil
	})
	return record, err
}

// Save persists the record or returns the existing record if it matches.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	var (
		saved    *ports.IdempotencyRecord
		conflict bool
	)
	err := s.db.Update(ctx, func(st *memdb.State) error {
		id := memdb.OrderKeyID{BuyerID: record.BuyerID, Key: record.Key}
		if existing, ok := st.OrderKeys[id]; ok {
			saved = toRecord(existing)
			conflict = existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID
			return nil
		}
		row := memdb.OrderKey{
			BuyerID:     record.BuyerID,
			Key:         record.Key,
			RequestHash: record.RequestHash,
			OrderID:     record.OrderID,
			CreatedAt:   s.db.Now(),
		}
		st.OrderKeys[id] = row
		saved = toRecord(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if conflict {
		return saved, ports.ErrIdempotencyConflict
	}
	return saved, nil
}

func toRecord(row memdb.OrderKey) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		BuyerID:     row.BuyerID,
		Key:         row.Key,
		RequestHash: row.RequestHash,
		OrderID:     row.OrderID,
		CreatedAt:   row.CreatedAt,
	}
}
