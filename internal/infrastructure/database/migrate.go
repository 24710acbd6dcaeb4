package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"advisorhub/advisor-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	models := []interface{}{
		&entities.Advisor{},
		&entities.AdvisorLink{},
		&entities.IdempotencyRecord{},
		&entities.RateLimit{},
	}

	for _, model := range models {
		if err := db.WithContext(ctx).AutoMigrate(model); err != nil {
			log.Error().Err(err).Msgf("failed to auto migrate schema: %T", model)
			return err
		}
	}

	log.Info().Msg("database schema migrated")
	return nil
}
