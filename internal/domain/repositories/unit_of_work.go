package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope. A Do nested
	// inside another joins the outer transaction.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// AfterCommit registers fn to run once the enclosing transaction commits.
	// Outside a transaction fn runs immediately.
	AfterCommit(ctx context.Context, fn func(ctx context.Context))
	// OnRollback registers fn to run if the enclosing transaction is rolled back.
	OnRollback(ctx context.Context, fn func(ctx context.Context))
}
