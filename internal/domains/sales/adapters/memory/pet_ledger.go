package memory

import (
	"context"
	"slices"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.PetLedger = (*PetLedger)(nil)

// PetLedger reads and flips pet statuses in the shared in-memory store.
type PetLedger struct {
	db *memdb.DB
}

func NewPetLedger(db *memdb.DB) *PetLedger {
	return &PetLedger{db: db}
}

func (l *PetLedger) LockPets(ctx context.Context, ids []int64) ([]domain.PetSummary, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	var pets []domain.PetSummary
	err := l.db.View(ctx, func(s *memdb.State) error {
		pets = make([]domain.PetSummary, 0, len(sorted))
		for _, id := range slices.Compact(sorted) {
			if pet, ok := s.Pets[id]; ok {
				pets = append(pets, petSummary(s, pet))
			}
		}
		return nil
	})
	return pets, err
}

func (l *PetLedger) TransitionPets(ctx context.Context, ids []int64, from []catalogdomain.Status, to catalogdomain.Status) (int64, error) {
	var changed int64
	err := l.db.Update(ctx, func(s *memdb.State) error {
		now := l.db.Now()
		for _, id := range ids {
			pet, ok := s.Pets[id]
			if !ok {
				continue
			}
			if len(from) > 0 && !slices.Contains(from, catalogdomain.Status(pet.Status)) {
				continue
			}
			pet.Status = string(to)
			pet.Version++
			pet.UpdatedAt = now
			s.Pets[id] = pet
			changed++
		}
		return nil
	})
	return changed, err
}
