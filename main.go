package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/VyaparSathi/vyapar-sathi-backend/db"
	"github.com/VyaparSathi/vyapar-sathi-backend/handlers"
	istore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/middleware"
	docSvc "github.com/VyaparSathi/vyapar-sathi-backend/models/documents/service"
	"github.com/VyaparSathi/vyapar-sathi-backend/router"
	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	pgstore "github.com/VyaparSathi/vyapar-sathi-backend/store/postgres"
	sbstore "github.com/VyaparSathi/vyapar-sathi-backend/store/supabase"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Data store: direct Postgres by default, Supabase PostgREST when
	// SUPABASE_USE_DATA_STORE is set (hosted mode without a DB connection).
	var (
		store  istore.Store
		dbPool *pgxpool.Pool
	)
	if cfg.Supabase.UseDataStore {
		sbClient, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey, &supabase.ClientOptions{})
		if err != nil {
			log.Fatalf("Failed to create Supabase client: %v", err)
		}
		store = sbstore.NewStore(sbClient)
		log.Infow("Using Supabase data store", "url", cfg.Supabase.URL)
	} else {
		dbPool = connectPostgres(cfg)
		defer dbPool.Close()

		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		store = pgstore.NewStore(dbPool)
	}

	// Redis client with TLS in production
	redisOptions := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	if cfg.Redis.UseTLS || cfg.IsProduction() {
		redisOptions.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() { _ = redisClient.Close() }()

	// Object storage (Cloudflare R2)
	fileStorage, err := docSvc.NewR2FileStorage(
		cfg.Storage.AccountID,
		cfg.Storage.Bucket,
		cfg.Storage.AccessKeyID,
		cfg.Storage.AccessKeySecret,
	)
	if err != nil {
		log.Fatalf("Failed to initialize R2 storage: %v", err)
	}

	// Services
	eventService := services.NewRedisEventServiceWithConfig(redisClient, cfg.EventService)
	rateLimitService := services.NewRateLimitService(redisClient, cfg.RateLimit)
	emailService := services.NewEmailService(&cfg.Email)
	extractionService := services.NewExtractionService(cfg.Extraction)
	credibilityService := services.NewCredibilityService(store, redisClient, eventService, emailService, cfg.Scoring)
	businessService := services.NewBusinessService(store.Businesses())
	proofService := services.NewProofService(store.Proofs(), store.Businesses())
	healthService := services.NewHealthService(dbPool, redisClient, cfg.Server.Version)

	documentService := docSvc.NewDocumentService(
		store.Documents(),
		store.Businesses(),
		fileStorage,
		extractionService,
		eventService,
		credibilityService,
		cfg.Storage.MaxUploadBytes,
	)

	// Auth
	jwtValidator, err := middleware.NewJWTValidator(&cfg.Supabase)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	// Router
	r := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		JWTValidator:       jwtValidator,
		RateLimiter:        rateLimitService,
		BusinessHandler:    handlers.NewBusinessHandler(businessService),
		DocumentHandler:    handlers.NewDocumentHandler(documentService, cfg.Storage.MaxUploadBytes, cfg.Extraction.APIKey),
		CredibilityHandler: handlers.NewCredibilityHandler(credibilityService, businessService),
		ProofHandler:       handlers.NewProofHandler(proofService),
		HealthHandler:      handlers.NewHealthHandler(healthService),
		WSHandler:          handlers.NewWSHandler(eventService, businessService, &cfg.Server),
		Logger:             log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("Server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	if err := eventService.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Event service shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}

func connectPostgres(cfg *config.Config) *pgxpool.Pool {
	log := logger.GetLogger()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	if cfg.IsProduction() {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return pool
}
