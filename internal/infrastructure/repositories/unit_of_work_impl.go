package repositories

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
	domainRepos "kitchenware-market.backend/internal/domain/repositories"
)

type contextKey string

const (
	txKey      contextKey = "tx_db"
	txHooksKey contextKey = "tx_hooks"
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

// txHooks collects callbacks registered while a transaction is open.
type txHooks struct {
	mu          sync.Mutex
	afterCommit []func(context.Context)
	onRollback  []func(context.Context)
}

func (h *txHooks) run(ctx context.Context, fns []func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	for _, fn := range fns {
		fn(detached)
	}
}

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// Do executes the given function within a transaction scope
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	hooks := &txHooks{}
	txCtx := context.WithValue(context.WithValue(ctx, txKey, tx), txHooksKey, hooks)

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			hooks.run(ctx, hooks.onRollback)
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		hooks.run(ctx, hooks.onRollback)
		return err
	}

	if err := commitTx(tx); err != nil {
		tx.Rollback()
		hooks.run(ctx, hooks.onRollback)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	hooks.run(ctx, hooks.afterCommit)
	return nil
}

// AfterCommit defers fn until the surrounding transaction commits.
func (u *UnitOfWorkImpl) AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	hooks, ok := ctx.Value(txHooksKey).(*txHooks)
	if !ok {
		fn(context.WithoutCancel(ctx))
		return
	}
	hooks.mu.Lock()
	hooks.afterCommit = append(hooks.afterCommit, fn)
	hooks.mu.Unlock()
}

// OnRollback registers compensation for work done outside the database.
func (u *UnitOfWorkImpl) OnRollback(ctx context.Context, fn func(ctx context.Context)) {
	hooks, ok := ctx.Value(txHooksKey).(*txHooks)
	if !ok {
		return
	}
	hooks.mu.Lock()
	hooks.onRollback = append(hooks.onRollback, fn)
	hooks.mu.Unlock()
}

// GetDB returns the transaction bound to ctx, or the base DB.
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB is the helper every repository in this package uses so that calls
// made inside UnitOfWork.Do join the open transaction.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
