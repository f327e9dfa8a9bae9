package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kitchenware-market.backend/internal/config"
	"kitchenware-market.backend/internal/infrastructure/datasources/postgres"
	"kitchenware-market.backend/pkg/logger"
)

type migrateDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	open    func(cfg config.DatabaseConfig) (*gorm.DB, func() error, error)
	migrate func(db *gorm.DB) error
}

func defaultMigrateDeps() migrateDeps {
	return migrateDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		open: func(cfg config.DatabaseConfig) (*gorm.DB, func() error, error) {
			sqlDB, err := postgres.NewConnection(cfg)
			if err != nil {
				return nil, nil, err
			}
			db, err := postgres.WrapGorm(sqlDB)
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
			return db, sqlDB.Close, nil
		},
		migrate: postgres.Migrate,
	}
}

func runMigrate(deps migrateDeps) error {
	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()
	logger.Init(cfg.Server.Env)
	ctx := context.Background()

	db, closeDB, err := deps.open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect db: %w", err)
	}
	defer closeDB()

	if err := deps.migrate(db); err != nil {
		return err
	}
	logger.Info(ctx, "Schema migrated", zap.String("database", cfg.Database.DBName))
	return nil
}

func main() {
	if err := runMigrate(defaultMigrateDeps()); err != nil {
		log.Fatal(err)
	}
}
