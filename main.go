// Package main provides the main entry point for the BrandAION platform
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandaion/platform/app/handlers"
	"github.com/brandaion/platform/app/middleware"
	"github.com/brandaion/platform/app/router"
	"github.com/brandaion/platform/app/scheduler"
	"github.com/brandaion/platform/app/services"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/config"
	_ "github.com/brandaion/platform/docs"
	"github.com/brandaion/platform/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	log.Println("Starting BrandAION platform...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity.
// Returns nil when caching is disabled; the discovery flow tolerates that.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
	}

	// Initialize repositories
	billingEventRepo := repository.NewBillingEventRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	constructRepo := repository.NewFAQConstructRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	organizationRepo := repository.NewOrganizationRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	productRepo := repository.NewProductRepository(db)
	configurationRepo := repository.NewClientConfigurationRepository(db)
	snapshotRepo := repository.NewDiscoverySnapshotRepository(db)
	discoveryFileRepo := repository.NewDiscoveryFileRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	sessionRepo := repository.NewCustomerSessionRepository(db)

	// Initialize services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	completionClient := services.NewCompletionClient(
		cfg.Completion.BaseURL,
		cfg.Completion.APIKey,
		cfg.Completion.Model,
		cfg.Completion.Timeout,
		cfg.Completion.PollInterval,
		cfg.Completion.MaxPollAttempts,
	)

	// Background generation workers
	generationScheduler := scheduler.NewGenerationScheduler(
		constructRepo,
		questionRepo,
		completionClient,
		db,
		cfg.Scheduler,
		cfg.Logging,
	)
	stopFuncs = append(stopFuncs, generationScheduler.Start(context.Background()))

	// Initialize business flows
	loginFlow := businessflow.NewLoginFlow(customerRepo, sessionRepo, tokenService, db)
	billingFlow := businessflow.NewBillingFlow(billingEventRepo, invoiceRepo, customerRepo, db, cfg.Billing)
	scheduleFlow := businessflow.NewScheduleFlow(invoiceRepo, scheduleRepo, organizationRepo, db)
	constructFlow := businessflow.NewConstructFlow(customerRepo, configurationRepo, scheduleRepo, constructRepo, db)
	configurationFlow := businessflow.NewConfigurationFlow(organizationRepo, brandRepo, productRepo, configurationRepo, db)
	reviewFlow := businessflow.NewReviewFlow(questionRepo, constructRepo, generationScheduler)
	assemblyFlow := businessflow.NewAssemblyFlow(constructRepo, questionRepo, batchRepo)
	enrichmentFlow := businessflow.NewEnrichmentFlow(organizationRepo, brandRepo, productRepo, batchRepo, snapshotRepo)
	discoveryFlow := businessflow.NewDiscoveryFlow(discoveryFileRepo, snapshotRepo, rc, cfg.Cache.DefaultTTL)
	reportFlow := businessflow.NewReportFlow(batchRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(loginFlow)
	billingHandler := handlers.NewBillingHandler(billingFlow)
	pipelineHandler := handlers.NewPipelineHandler(scheduleFlow, constructFlow, assemblyFlow)
	reviewHandler := handlers.NewReviewHandler(reviewFlow)
	enrichmentHandler := handlers.NewEnrichmentHandler(enrichmentFlow)
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryFlow, cfg.Cache.DefaultTTL)
	configurationHandler := handlers.NewConfigurationHandler(configurationFlow)
	reportHandler := handlers.NewReportHandler(reportFlow)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	fiberRouter := router.NewFiberRouter(
		cfg,
		authMiddleware,
		authHandler,
		billingHandler,
		pipelineHandler,
		reviewHandler,
		enrichmentHandler,
		discoveryHandler,
		configurationHandler,
		reportHandler,
	)

	return &Application{
		router:    fiberRouter,
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
