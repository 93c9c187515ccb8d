package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	db *memdb.DB
}

func NewSessionStore(db *memdb.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if strings.TrimSpace(session.TokenID) == "" || strings.TrimSpace(session.UserID) == "" {
		return errors.New("token id and user id are required")
	}
	return s.db.Update(ctx, func(st *memdb.State) error {
		st.Sessions[session.TokenID] = memdb.Session{
			TokenID:   session.TokenID,
			UserID:    session.UserID,
			ExpiresAt: session.ExpiresAt,
			CreatedAt: session.CreatedAt,
		}
		return nil
	})
}

func (s *SessionStore) Get(ctx context.Context, tokenID string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.View(ctx, func(st *memdb.State) error {
		row, ok := st.Sessions[tokenID]
		if !ok {
			return ports.ErrSessionNotFound
		}
		session = domain.Session{TokenID: row.TokenID, UserID: row.UserID, ExpiresAt: row.ExpiresAt, CreatedAt: row.CreatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, tokenID string) error {
	return s.db.Update(ctx, func(st *memdb.State) error {
		delete(st.Sessions, tokenID)
		return nil
	})
}

func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := s.db.Update(ctx, func(st *memdb.State) error {
		for id, row := range st.Sessions {
			if !now.Before(row.ExpiresAt) {
				delete(st.Sessions, id)
				purged++
			}
		}
		return nil
	})
	return purged, err
}
