package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"kitchenware-market.backend/internal/config"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	domainrepo "kitchenware-market.backend/internal/domain/repositories"
	"kitchenware-market.backend/internal/infrastructure/datasources/postgres"
	"kitchenware-market.backend/internal/infrastructure/repositories"
	"kitchenware-market.backend/pkg/utils"
)

var defaultCategories = []entities.Category{
	{Name: "Cookware", Description: "Pots, pans and skillets", Icon: "pot"},
	{Name: "Bakeware", Description: "Sheets, tins and baking dishes", Icon: "cake"},
	{Name: "Cutlery", Description: "Knives, sharpeners and blocks", Icon: "knife"},
	{Name: "Appliances", Description: "Mixers, blenders and other small appliances", Icon: "plug"},
	{Name: "Utensils", Description: "Spatulas, whisks, ladles and gadgets", Icon: "utensils"},
	{Name: "Tableware", Description: "Plates, bowls and serving pieces", Icon: "plate"},
	{Name: "Storage", Description: "Containers, jars and organizers", Icon: "box"},
}

type seedDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	open    func(cfg config.DatabaseConfig) (*gorm.DB, func() error, error)
	out     io.Writer
}

func defaultSeedDeps() seedDeps {
	return seedDeps{
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
		out: os.Stdout,
	}
}

// seedCategories inserts the default categories that do not exist yet and
// returns how many were created.
func seedCategories(ctx context.Context, repo domainrepo.CategoryRepository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		have[c.Name] = struct{}{}
	}

	created := 0
	for _, c := range defaultCategories {
		if _, ok := have[c.Name]; ok {
			continue
		}
		category := c
		category.ID = utils.GenerateUUIDv7()
		if err := repo.Create(ctx, &category); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				continue
			}
			return created, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		created++
	}
	return created, nil
}

func runSeed(deps seedDeps) error {
	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	db, closeDB, err := deps.open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect db: %w", err)
	}
	defer closeDB()

	created, err := seedCategories(context.Background(), repositories.NewCategoryRepository(db))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(deps.out, "Seeded %d categories (%d already present)\n", created, len(defaultCategories)-created)
	return nil
}

func main() {
	if err := runSeed(defaultSeedDeps()); err != nil {
		log.Fatal(err)
	}
}
