package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/config"
	"github.com/noah-isme/smart-student-hub-api/internal/database"
	"github.com/noah-isme/smart-student-hub-api/internal/handler"
	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
	"github.com/noah-isme/smart-student-hub-api/internal/router"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
	cloud "github.com/noah-isme/smart-student-hub-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnLifetime,
		LogQueries:      cfg.AppEnv == "development",
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(rootCtx, cfg.RedisURL, 3*time.Second)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, view cache and redis fan-out disabled")
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, broker fan-out disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	validate := utils.NewValidator()

	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	cache := service.NewViewCache(redisClient, cfg.CacheTTL, logger)
	auditService := service.NewAuditService(auditRepo, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventsChannel, natsConn, validate, logger)
	activityService := service.NewActivityService(activityRepo, uploadRepo, validate, auditService, notificationService, cache, logger)
	portfolioService := service.NewPortfolioService(activityService, userRepo, cache, logger)
	dashboardService := service.NewDashboardService(activityService, activityRepo, userRepo, cache, logger)
	userService := service.NewUserService(userRepo, logger)

	var proofService service.ProofService
	store, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary not configured, proof uploads disabled")
	} else {
		proofService = service.NewProofService(store, uploadRepo, cfg.UploadMaxMB, logger)
	}

	if cfg.SeedDemo {
		seeder := service.NewSeedService(userRepo, activityRepo, cfg.SeedDemo, logger)
		if _, err := seeder.SeedDemo(rootCtx); err != nil && !errors.Is(err, service.ErrSeedDisabled) {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	notificationService.Start(rootCtx)

	deps := router.Dependencies{
		ActivityHandler:     handler.NewActivityHandler(activityService, proofService, logger),
		PortfolioHandler:    handler.NewPortfolioHandler(portfolioService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.NotificationKeepAlive),
		ProfileHandler:      handler.NewProfileHandler(userService, logger),
		AuditHandler:        handler.NewAuditHandler(auditService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		IdentityMiddleware:  middleware.ResolveIdentity(userService, logger),
		HealthProbes:        healthProbes(db, redisClient),
	}
	if proofService != nil {
		deps.UploadHandler = handler.NewUploadHandler(proofService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:        &logger,
		AllowOrigins:  cfg.AllowOrigins,
		StackTraces:   cfg.AppEnv != "production",
		SlowThreshold: cfg.SlowRequestThreshold,
	})
	router.Register(app, cfg, deps)

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancelRoot)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client) []handler.HealthProbe {
	probes := []handler.HealthProbe{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}

	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}

	return probes
}

func waitForShutdown(app *fiber.App, cancel context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancel()

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
