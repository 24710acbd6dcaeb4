package ratelimit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"advisorhub/advisor-api/internal/infrastructure/database/entities"
)

// PostgresStore backs the rate limiter with an atomic upsert so concurrent
// calls cannot both observe the pre-increment count.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a store backed by the provided DB.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Increment bumps the counter for (actorID, action) in a single statement,
// resetting the window first when it has elapsed.
func (s *PostgresStore) Increment(ctx context.Context, actorID, action string, window time.Duration, now time.Time) (int64, time.Time, error) {
	cutoff := now.Add(-window)

	var row struct {
		Count       int64
		WindowStart time.Time
	}
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO rate_limits (actor_id, action, window_start, count, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (actor_id, action) DO UPDATE SET
			count = CASE
				WHEN rate_limits.window_start <= ? THEN 1
				ELSE rate_limits.count + 1
			END,
			window_start = CASE
				WHEN rate_limits.window_start <= ? THEN ?
				ELSE rate_limits.window_start
			END,
			updated_at = ?
		RETURNING count, window_start`,
		actorID, action, now, now,
		cutoff,
		cutoff, now,
		now,
	).Scan(&row).Error
	if err != nil {
		return 0, time.Time{}, err
	}

	return row.Count, row.WindowStart, nil
}

// DeleteStale removes counter rows whose window ended before olderThan.
func (s *PostgresStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("window_start < ?", olderThan).
		Delete(&entities.RateLimit{})
	return res.RowsAffected, res.Error
}
