// Package transaction abstracts a unit of work spanning several repositories.
package transaction

import "context"

// Manager runs fn inside a single transaction. Repositories called with the
// context passed to fn take part in that transaction; any error returned by
// fn rolls every write back.
type Manager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Func adapts a plain function to Manager.
type Func func(ctx context.Context, fn func(ctx context.Context) error) error

// WithinTx implements Manager.
func (f Func) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// None runs fn directly without transactional guarantees.
var None Manager = Func(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
