package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"goodfork/internal/catalog"
	"goodfork/internal/config"
	"goodfork/internal/database"
	"goodfork/internal/events"
	"goodfork/internal/logging"
	"goodfork/internal/measure"
	"goodfork/internal/metrics"
	"goodfork/internal/models"
	"goodfork/internal/repository"
	"goodfork/internal/reports"
	"goodfork/internal/service"
	"goodfork/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

// app is the composition root: the wired services other processes embed or
// drive through the library API.
type app struct {
	bookings *service.BookingService
	orders   *service.OrderService
	payments *service.PaymentService
	sweeper  *service.NoShowSweeper
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, converter, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, limiter := initRateLimiter(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	startMetrics(ctx, cfg, &logger)

	reporter := reports.NewSalesReporter(db, cfg.Exports.Path, &logger)
	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	exportWorker := worker.NewSalesExportWorker(db, reporter, redisClient, retryPolicy, &logger)
	go exportWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeStockEvents(eventBus, &logger)

	menuCatalog := catalog.New(cfg.Menus)

	bookingService := service.NewBookingService(db, db, eventBus, cfg.Booking.MaxBookingDays, &logger)
	orderService := service.NewOrderService(
		db, db, menuCatalog, converter, limiter, eventBus,
		cfg.Booking.RateLimitOrders,
		time.Duration(cfg.Booking.RateLimitWindow)*time.Second,
		&logger,
	)
	application := &app{
		bookings: bookingService,
		orders:   orderService,
		payments: service.NewPaymentService(db, orderService, eventBus, exportWorker, &logger),
		sweeper: service.NewNoShowSweeper(
			db, bookingService,
			time.Duration(cfg.Booking.NoShowGraceMin)*time.Minute,
			&logger,
		),
	}
	go application.sweeper.Start(ctx)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	logger.Info().Str("app", cfg.App.Name).Msg("goodfork core started")
	<-ctx.Done()
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("failed to create database directory")
			return err
		}
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create export directory")
		return err
	}
	return nil
}

// initDatabase opens the store, seeds the measurement registry and hall
// tables from config and builds the converter from the persisted registry.
func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, *measure.Engine, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open database")
		return nil, nil, err
	}

	ctx := context.Background()

	engine := measure.DefaultEngine()
	rows := engine.Rows()
	rows = append(rows, cfg.Units...)
	if err := db.SeedMeasurements(ctx, measure.DefaultTypes(), rows); err != nil {
		logger.Error().Err(err).Msg("failed to seed measurements")
		return nil, nil, err
	}

	stored, err := db.LoadMeasurementRows(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load measurement registry")
		return nil, nil, err
	}
	engine.Load(stored)

	seeds := make([]models.Table, 0, len(cfg.Tables))
	for _, t := range cfg.Tables {
		seeds = append(seeds, models.Table{Name: t.Name, Capacity: t.Capacity})
	}
	if err := db.SeedTables(ctx, seeds); err != nil {
		logger.Error().Err(err).Msg("failed to seed tables")
		return nil, nil, err
	}

	return db, engine, nil
}

func initRateLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverRateLimiter) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primary := repository.NewRedisRateLimiter(redisClient)
	fallback := repository.NewMemoryRateLimiter()
	return redisClient, repository.NewFailoverRateLimiter(primary, fallback, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func subscribeStockEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(events.EventStockDepleted, func(ev *events.Event) error {
		logger.Warn().RawJSON("payload", ev.Payload).Msg("stock depleted, reorder needed")
		return nil
	})
}
