package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"kitchenware-market.backend/internal/config"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/internal/infrastructure/datasources/postgres"
	"kitchenware-market.backend/internal/infrastructure/repositories"
	"kitchenware-market.backend/internal/infrastructure/storage"
	"kitchenware-market.backend/internal/usecases"
)

type verifier interface {
	SetVerificationStatus(ctx context.Context, username string, status entities.VerificationStatus) (*entities.UserProfile, error)
}

type adminSellerDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (verifier, io.Closer, error)
	out     io.Writer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func defaultAdminSellerDeps() adminSellerDeps {
	return adminSellerDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (verifier, io.Closer, error) {
			sqlDB, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			db, err := postgres.WrapGorm(sqlDB)
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
			v, err := newVerifier(db, cfg.Media)
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
			return v, closerFunc(sqlDB.Close), nil
		},
		out: os.Stdout,
	}
}

func newVerifier(db *gorm.DB, media config.MediaConfig) (*usecases.IdentityUsecase, error) {
	blobs, err := storage.NewLocalStorage(media.Root, media.PublicPrefix)
	if err != nil {
		return nil, err
	}
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	imageRepo := repositories.NewItemImageRepository(db)
	uow := repositories.NewUnitOfWork(db)
	mediaUsecase := usecases.NewMediaUsecase(blobs, imageRepo, itemRepo, profileRepo,
		repositories.NewMediaReferenceRepository(db), uow, usecases.MediaOptions{})
	catalog := usecases.NewCatalogUsecase(repositories.NewCategoryRepository(db), itemRepo, imageRepo, uow, mediaUsecase)
	return usecases.NewIdentityUsecase(userRepo, profileRepo, uow, mediaUsecase, catalog), nil
}

func runAdminSeller(args []string, deps adminSellerDeps) error {
	fs := flag.NewFlagSet("admin-seller", flag.ContinueOnError)
	usernameFlag := fs.String("username", "", "seller username (required)")
	statusFlag := fs.String("status", string(entities.VerificationVerified), "unverified, verified or suspended")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *usernameFlag == "" {
		return fmt.Errorf("--username is required")
	}
	status := entities.VerificationStatus(*statusFlag)
	if !status.IsValid() {
		return fmt.Errorf("invalid --status %q", *statusFlag)
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()
	v, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	profile, err := v.SetVerificationStatus(context.Background(), *usernameFlag, status)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", *usernameFlag, err)
	}

	_, _ = fmt.Fprintf(deps.out, "username=%s\n", *usernameFlag)
	_, _ = fmt.Fprintf(deps.out, "verification_status=%s\n", profile.VerificationStatus)
	_, _ = fmt.Fprintf(deps.out, "is_seller=%t\n", profile.IsSeller)
	if !profile.IsSeller && status == entities.VerificationVerified {
		_, _ = fmt.Fprintln(deps.out, "warning: seller mode is off, the profile stays hidden from seller listings")
	}
	return nil
}

func main() {
	if err := runAdminSeller(os.Args[1:], defaultAdminSellerDeps()); err != nil {
		log.Fatal(err)
	}
}
