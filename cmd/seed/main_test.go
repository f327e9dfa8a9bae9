package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kitchenware-market.backend/internal/config"
	"kitchenware-market.backend/internal/infrastructure/repositories"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:seed_%d?mode=memory&cache=shared&_foreign_keys=1", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repositories.ApplySQLiteSchema(db))
	return db
}

func TestSeedCategories_Idempotent(t *testing.T) {
	db := openSeedDB(t)
	repo := repositories.NewCategoryRepository(db)
	ctx := context.Background()

	created, err := seedCategories(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(defaultCategories), created)

	created, err = seedCategories(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, created)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(defaultCategories))
}

func TestRunSeed(t *testing.T) {
	db := openSeedDB(t)
	var out bytes.Buffer
	deps := seedDeps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: func() *config.Config { return &config.Config{} },
		open: func(config.DatabaseConfig) (*gorm.DB, func() error, error) {
			return db, func() error { return nil }, nil
		},
		out: &out,
	}
	require.NoError(t, runSeed(deps))
	assert.Contains(t, out.String(), fmt.Sprintf("Seeded %d categories", len(defaultCategories)))

	deps.open = func(config.DatabaseConfig) (*gorm.DB, func() error, error) {
		return nil, nil, errors.New("refused")
	}
	assert.Error(t, runSeed(deps))
}
