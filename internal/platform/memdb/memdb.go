// Package memdb is the process-local store behind the memory adapters.
//
// It keeps every table in one State guarded by a single lock so that the
// memory adapters of different domains can share rows the way the Postgres
// adapters share a database, including all-or-nothing transactions.
package memdb

import (
	"context"
	"maps"
	"sync"
	"time"
)

// State holds every table. Adapters read and write it only inside View or
// Update callbacks and must not retain references afterwards.
type State struct {
	Users        map[string]User
	Profiles     map[string]Profile
	Sessions     map[string]Session
	Pets         map[int64]Pet
	PetImages    map[int64]PetImage
	Orders       map[int64]Order
	OrderItems   map[int64]OrderItem
	CareServices map[int64]CareService
	Bookings     map[int64]Booking
	CareLogs     map[int64]CareLog
	Posts        map[int64]Post
	Comments     map[int64]Comment
	Favorites    map[FavoriteKey]Favorite
	OrderKeys    map[OrderKeyID]OrderKey

	sequences map[string]int64
}

func newState() *State {
	return &State{
		Users:        map[string]User{},
		Profiles:     map[string]Profile{},
		Sessions:     map[string]Session{},
		Pets:         map[int64]Pet{},
		PetImages:    map[int64]PetImage{},
		Orders:       map[int64]Order{},
		OrderItems:   map[int64]OrderItem{},
		CareServices: map[int64]CareService{},
		Bookings:     map[int64]Booking{},
		CareLogs:     map[int64]CareLog{},
		Posts:        map[int64]Post{},
		Comments:     map[int64]Comment{},
		Favorites:    map[FavoriteKey]Favorite{},
		OrderKeys:    map[OrderKeyID]OrderKey{},
		sequences:    map[string]int64{},
	}
}

// NextID allocates the next identifier of a table sequence.
func (s *State) NextID(table string) int64 {
	s.sequences[table]++
	return s.sequences[table]
}

func (s *State) clone() *State {
	c := &State{
		Users:        make(map[string]User, len(s.Users)),
		Profiles:     maps.Clone(s.Profiles),
		Sessions:     maps.Clone(s.Sessions),
		Pets:         make(map[int64]Pet, len(s.Pets)),
		PetImages:    maps.Clone(s.PetImages),
		Orders:       make(map[int64]Order, len(s.Orders)),
		OrderItems:   maps.Clone(s.OrderItems),
		CareServices: maps.Clone(s.CareServices),
		Bookings:     maps.Clone(s.Bookings),
		CareLogs:     maps.Clone(s.CareLogs),
		Posts:        make(map[int64]Post, len(s.Posts)),
		Comments:     maps.Clone(s.Comments),
		Favorites:    maps.Clone(s.Favorites),
		OrderKeys:    maps.Clone(s.OrderKeys),
		sequences:    maps.Clone(s.sequences),
	}
	for k, v := range s.Users {
		c.Users[k] = v.clone()
	}
	for k, v := range s.Pets {
		c.Pets[k] = v.clone()
	}
	for k, v := range s.Orders {
		c.Orders[k] = v.clone()
	}
	for k, v := range s.Posts {
		c.Posts[k] = v.clone()
	}
	return c
}

// DB is an in-memory database with serialisable transactions.
type DB struct {
	mu    sync.RWMutex
	state *State
	now   func() time.Time
}

// New creates an empty database.
func New() *DB {
	return &DB{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the clock used for row timestamps.
func (db *DB) WithClock(now func() time.Time) *DB {
	if now != nil {
		db.now = now
	}
	return db
}

// Now returns the current time of the database clock.
func (db *DB) Now() time.Time {
	return db.now()
}

type txKey struct{}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

// WithinTx runs fn holding the write lock. The state is restored from a
// snapshot when fn fails. Nested calls join the outer transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := db.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.state = snapshot
		return err
	}
	return nil
}

// View runs a read-only callback.
func (db *DB) View(ctx context.Context, fn func(s *State) error) error {
	if db.inTx(ctx) {
		return fn(db.state)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.state)
}

// Update runs a mutating callback. Outside a transaction a failing callback
// is rolled back on its own.
func (db *DB) Update(ctx context.Context, fn func(s *State) error) error {
	if db.inTx(ctx) {
		return fn(db.state)
	}
	return db.WithinTx(ctx, func(context.Context) error {
		return fn(db.state)
	})
}

// Reset drops every row; used by contract tests between interactions.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.state = newState()
}
