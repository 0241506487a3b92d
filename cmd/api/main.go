package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/config"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/infrastructure/cache"
	"github.com/sangkips/salon-api/internal/infrastructure/database"
	"github.com/sangkips/salon-api/internal/infrastructure/events"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-api/internal/presentation/http/routes"
	"github.com/sangkips/salon-api/pkg/logger"
	"github.com/sangkips/salon-api/pkg/printer"
	"github.com/sangkips/salon-api/pkg/utils"
	"go.uber.org/zap"
)

const idempotencySweepInterval = time.Hour

// repositories is the storage backend selected by STORAGE_DRIVER
type repositories struct {
	users          domainRepo.UserRepository
	comandas       domainRepo.ComandaRepository
	catalog        domainRepo.CatalogRepository
	clients        domainRepo.ClientRepository
	paymentMethods domainRepo.PaymentMethodRepository
	promotions     domainRepo.PromotionRepository
	idempotency    domainRepo.IdempotencyRepository
	transactor     domainRepo.Transactor
}

func openStorage(cfg *config.Config, zlog *zap.Logger) (*repositories, error) {
	if cfg.Storage.Driver == "memory" {
		zlog.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:          store.Users(),
			comandas:       store.Comandas(),
			catalog:        store.Catalog(),
			clients:        store.Clients(),
			paymentMethods: store.PaymentMethods(),
			promotions:     store.Promotions(),
			idempotency:    store.Idempotency(),
			transactor:     store.Transactor(),
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, zlog); err != nil {
		return nil, err
	}

	return &repositories{
		users:          repository.NewUserRepository(db),
		comandas:       repository.NewComandaRepository(db),
		catalog:        repository.NewCatalogRepository(db),
		clients:        repository.NewClientRepository(db),
		paymentMethods: repository.NewPaymentMethodRepository(db),
		promotions:     repository.NewPromotionRepository(db),
		idempotency:    repository.NewIdempotencyRepository(db),
		transactor:     repository.NewTransactor(db),
	}, nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStorage(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}

	seeder := &database.Seeder{Users: repos.users, PaymentMethods: repos.paymentMethods, Log: zlog}
	if err := seeder.SeedDefaultData(ctx); err != nil {
		zlog.Warn("failed to seed default data", zap.Error(err))
	}

	// Optional redis: catalog price cache and checkout events
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			zlog.Warn("redis unavailable, running without cache and events", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			repos.catalog = cache.NewCatalogCache(repos.catalog, rdb, cfg.Redis.CacheTTL, zlog)
		}
	}

	loc := cfg.App.Location()
	clock := service.SystemClock(loc)

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize services
	pricingService := service.NewPricingService(repos.promotions, repos.transactor, clock, zlog)
	comandaService := service.NewComandaService(
		repos.comandas,
		repos.catalog,
		repos.clients,
		repos.paymentMethods,
		pricingService,
		repos.transactor,
		clock,
		zlog,
	)
	catalogService := service.NewCatalogService(repos.catalog)
	clientService := service.NewClientService(repos.clients)
	paymentMethodService := service.NewPaymentMethodService(repos.paymentMethods)
	authService := service.NewAuthService(repos.users, jwtManager, clock, zlog)
	userService := service.NewUserService(repos.users)
	dashboardService := service.NewDashboardService(repos.comandas, repos.clients, clock)

	if rdb != nil {
		publisher := events.NewPublisher(rdb)
		comandaService.OnClosed(func(ctx context.Context, ev entity.ComandaClosedEvent) {
			if err := publisher.PublishComandaClosed(ctx, ev); err != nil {
				zlog.Warn("failed to publish comanda closed event", zap.Error(err))
			}
		})
	}

	printerKind := printer.Kind(cfg.Printer.Type)
	thermalPrinter, err := printer.New(printer.Config{
		Kind:    printerKind,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		zlog.Warn("failed to initialize printer", zap.Error(err))
		thermalPrinter = printer.Discard
		printerKind = printer.KindNone
	}
	printerService := service.NewPrinterService(thermalPrinter, repos.comandas, repos.paymentMethods, service.PrinterOptions{
		Kind:      printerKind,
		CharWidth: cfg.Printer.CharWidth,
		StoreName: cfg.Printer.StoreName,
	}, zlog)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Comanda:   handler.NewComandaHandler(comandaService, loc),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Client:    handler.NewClientHandler(clientService, paymentMethodService),
		Promotion: handler.NewPromotionHandler(pricingService, catalogService, loc),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
		RateLimiter:     rateLimiter,
		Log:             zlog,
	})

	go sweepIdempotencyKeys(ctx, repos.idempotency, zlog)

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
}

// sweepIdempotencyKeys deletes expired keys until ctx is cancelled
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zlog *zap.Logger) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := repo.DeleteExpired(ctx, now); err != nil {
				zlog.Warn("failed to delete expired idempotency keys", zap.Error(err))
			}
		}
	}
}
