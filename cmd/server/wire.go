//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
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
	advisorrepo "advisorhub/advisor-api/internal/infrastructure/repository/advisor"
	idempotencyrepo "advisorhub/advisor-api/internal/infrastructure/repository/idempotency"
	ratelimitrepo "advisorhub/advisor-api/internal/infrastructure/repository/ratelimit"
	"advisorhub/advisor-api/internal/infrastructure/sweeper"
	"advisorhub/advisor-api/internal/interfaces/httpserver"
)

var advisorSet = wire.NewSet(
	advisorrepo.NewPostgresRepository,
	wire.Bind(new(advisordomain.Repository), new(*advisorrepo.PostgresRepository)),
	advisordomain.NewService,
	wire.Bind(new(provision.AdvisorCreator), new(*advisordomain.Service)),
)

var provisioningSet = wire.NewSet(
	idempotencyrepo.NewPostgresStore,
	wire.Bind(new(idempotency.Store), new(*idempotencyrepo.PostgresStore)),
	ratelimitrepo.NewPostgresStore,
	wire.Bind(new(ratelimit.Store), new(*ratelimitrepo.PostgresStore)),
	newLimiter,
	newGuard,
	newProvisionOptions,
	provision.NewService,
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		newLogger,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		newTemplateRegistry,
		advisorSet,
		provisioningSet,
		newSweeper,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newTemplateRegistry(cfg *config.Config) (*team.Registry, error) {
	return team.NewRegistryFromFile(cfg.TemplatesFile)
}

func newLimiter(store ratelimit.Store, log zerolog.Logger) *ratelimit.Limiter {
	return ratelimit.NewLimiter(store, log)
}

func newGuard(cfg *config.Config, store idempotency.Store, log zerolog.Logger) *idempotency.Guard {
	return idempotency.NewGuard(store, cfg.IdempotencyWait, log)
}

func newProvisionOptions(cfg *config.Config) provision.Options {
	return provision.Options{
		RateLimit:  cfg.ProvisionRateLimit,
		RateWindow: cfg.ProvisionRateWindow,
		ResultTTL:  cfg.IdempotencyTTL,
	}
}

func newSweeper(cfg *config.Config, idemStore *idempotencyrepo.PostgresStore, rlStore *ratelimitrepo.PostgresStore, log zerolog.Logger) *sweeper.Sweeper {
	return sweeper.New(idemStore, rlStore, cfg.ProvisionRateWindow, log)
}
