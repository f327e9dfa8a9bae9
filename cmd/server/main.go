package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kitchenware-market.backend/internal/config"
	"kitchenware-market.backend/internal/infrastructure/jobs"
	"kitchenware-market.backend/internal/infrastructure/repositories"
	"kitchenware-market.backend/internal/infrastructure/storage"
	"kitchenware-market.backend/internal/interfaces/http/handlers"
	"kitchenware-market.backend/internal/interfaces/http/middleware"
	"kitchenware-market.backend/internal/interfaces/http/validators"
	"kitchenware-market.backend/internal/usecases"
	"kitchenware-market.backend/pkg/jwt"
	"kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		gormCfg := &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		}
		if cfg.Driver == "sqlite" {
			return gorm.Open(sqlite.Open(cfg.SQLitePath+"?_foreign_keys=1"), gormCfg)
		}
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL(),
			PreferSimpleProtocol: true,
		}), gormCfg)
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Redis.Enabled {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "Redis disabled; sessions and idempotency keys are off")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validators.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(ctx, "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(ctx, "Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	blobs, err := storage.NewLocalStorage(cfg.Media.Root, cfg.Media.PublicPrefix)
	if err != nil {
		return fmt.Errorf("failed to initialize media storage: %w", err)
	}
	defer blobs.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	imageRepo := repositories.NewItemImageRepository(db)
	refRepo := repositories.NewMediaReferenceRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Sessions need Redis. The interface must stay nil when it is off.
	var sessions usecases.SessionStore
	if cfg.Redis.Enabled {
		store, err := newSessionStore(cfg.Security.SessionEncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to initialize session store: %w", err)
		}
		sessions = store
	}

	// Usecases
	mediaUsecase := usecases.NewMediaUsecase(blobs, imageRepo, itemRepo, profileRepo, refRepo, uow, usecases.MediaOptions{
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		AllowedExts:    cfg.Media.AllowedExts,
	})
	catalogUsecase := usecases.NewCatalogUsecase(categoryRepo, itemRepo, imageRepo, uow, mediaUsecase)
	identityUsecase := usecases.NewIdentityUsecase(userRepo, profileRepo, uow, mediaUsecase, catalogUsecase)
	authUsecase := usecases.NewAuthUsecase(userRepo, identityUsecase, uow, jwtService, sessions)

	// Handlers
	checks := map[string]handlers.Pinger{"database": sqlDB.PingContext}
	if cfg.Redis.Enabled {
		checks["redis"] = func(ctx context.Context) error { return redis.GetClient().Ping(ctx).Err() }
	}
	deps := routeDeps{
		authHandler:     handlers.NewAuthHandler(authUsecase, identityUsecase),
		profileHandler:  handlers.NewProfileHandler(identityUsecase),
		sellerHandler:   handlers.NewSellerHandler(identityUsecase),
		categoryHandler: handlers.NewCategoryHandler(catalogUsecase),
		itemHandler:     handlers.NewItemHandler(catalogUsecase),
		healthHandler:   handlers.NewHealthHandler(checks),
		actorMiddleware: middleware.ActorMiddleware(authUsecase),
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sweepJob *jobs.OrphanMediaSweepJob
	if cfg.Jobs.OrphanSweepEnabled {
		sweepJob = jobs.NewOrphanMediaSweepJob(mediaUsecase, cfg.Jobs.OrphanSweepInterval, cfg.Jobs.OrphanGracePeriod)
		go sweepJob.Start(jobCtx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerInfraRoutes(r, deps.healthHandler, cfg.Media)
	registerAPIV1Routes(r, deps)

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(ctx, "Shutting down server")
		if sweepJob != nil {
			sweepJob.Stop()
		}
		cancel()
	}()

	logger.Info(ctx, "Kitchenware marketplace starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "/api/v1"),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
