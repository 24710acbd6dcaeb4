package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"advisorhub/advisor-api/internal/config"
	advisordomain "advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/domain/idempotency"
	"advisorhub/advisor-api/internal/domain/provision"
	"advisorhub/advisor-api/internal/domain/ratelimit"
	"advisorhub/advisor-api/internal/domain/team"
	"advisorhub/advisor-api/internal/infrastructure/auth"
	"advisorhub/advisor-api/internal/infrastructure/database"
	"advisorhub/advisor-api/internal/infrastructure/logger"
	"advisorhub/advisor-api/internal/infrastructure/observability"
	advisorrepo "advisorhub/advisor-api/internal/infrastructure/repository/advisor"
	idempotencyrepo "advisorhub/advisor-api/internal/infrastructure/repository/idempotency"
	ratelimitrepo "advisorhub/advisor-api/internal/infrastructure/repository/ratelimit"
	"advisorhub/advisor-api/internal/infrastructure/sweeper"
	"advisorhub/advisor-api/internal/interfaces/httpserver"
)

// @title Advisor API
// @version 1.0
// @description Template-driven advisor provisioning service
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	sweep      *sweeper.Sweeper
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, sweep *sweeper.Sweeper, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		sweep:      sweep,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	defer a.sweep.Stop()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	registry, err := team.NewRegistryFromFile(cfg.TemplatesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load team templates")
	}

	advisorRepository := advisorrepo.NewPostgresRepository(db)
	idempotencyStore := idempotencyrepo.NewPostgresStore(db)
	ratelimitStore := ratelimitrepo.NewPostgresStore(db)

	advisorService := advisordomain.NewService(advisorRepository, log)
	limiter := ratelimit.NewLimiter(ratelimitStore, log)
	guard := idempotency.NewGuard(idempotencyStore, cfg.IdempotencyWait, log)
	provisionService := provision.NewService(registry, advisorService, limiter, guard, provision.Options{
		RateLimit:  cfg.ProvisionRateLimit,
		RateWindow: cfg.ProvisionRateWindow,
		ResultTTL:  cfg.IdempotencyTTL,
	}, log)

	sweep := sweeper.New(idempotencyStore, ratelimitStore, cfg.ProvisionRateWindow, log)
	if err := sweep.Start(cfg.SweepCron); err != nil {
		log.Fatal().Err(err).Msg("schedule background sweep")
	}

	httpServer := httpserver.New(cfg, log, provisionService, advisorService, registry, authValidator)
	app := NewApplication(httpServer, sweep, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
