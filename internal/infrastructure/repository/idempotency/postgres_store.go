package idempotency

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "advisorhub/advisor-api/internal/domain/idempotency"
	"advisorhub/advisor-api/internal/infrastructure/database/entities"
)

// PostgresStore persists idempotency records. The primary key on `key` is the
// atomicity mechanism: of two concurrent claims, one insert loses with a
// conflict and observes the winner's row.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a store backed by the provided DB.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Claim tries to take ownership of key. Expired rows - completed results past
// their TTL or claims abandoned by a crashed process - are taken over.
func (s *PostgresStore) Claim(ctx context.Context, key string, ttl time.Duration) (domain.ClaimOutcome, *domain.Record, error) {
	now := time.Now().UTC()

	var inserted entities.IdempotencyRecord
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO idempotency_records (key, status, result, created_at, expires_at)
		VALUES (?, ?, NULL, ?, ?)
		ON CONFLICT (key) DO NOTHING
		RETURNING key`,
		key, string(domain.StatusPending), now, now.Add(ttl),
	).Scan(&inserted).Error
	if err != nil {
		return 0, nil, err
	}
	if inserted.Key == key {
		return domain.OutcomeClaimed, nil, nil
	}

	var existing entities.IdempotencyRecord
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The winning row was released between our insert and read.
			return domain.OutcomePending, nil, nil
		}
		return 0, nil, err
	}

	if existing.ExpiresAt.After(now) {
		if existing.Status == string(domain.StatusCompleted) {
			return domain.OutcomeCompleted, toDomain(&existing), nil
		}
		return domain.OutcomePending, nil, nil
	}

	// Expired: attempt an optimistic takeover. Losing the race means another
	// claim got there first and the caller should poll.
	res := s.db.WithContext(ctx).
		Model(&entities.IdempotencyRecord{}).
		Where("key = ? AND expires_at <= ?", key, now).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusPending),
			"result":     nil,
			"created_at": now,
			"expires_at": now.Add(ttl),
		})
	if res.Error != nil {
		return 0, nil, res.Error
	}
	if res.RowsAffected == 1 {
		return domain.OutcomeClaimed, nil, nil
	}
	return domain.OutcomePending, nil, nil
}

// Complete stores the result under key and extends the expiry to now+ttl.
func (s *PostgresStore) Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&entities.IdempotencyRecord{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusCompleted),
			"result":     result,
			"expires_at": now.Add(ttl),
		}).Error
}

// Release drops an unfinished claim so a retry can re-execute.
func (s *PostgresStore) Release(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("key = ? AND status = ?", key, string(domain.StatusPending)).
		Delete(&entities.IdempotencyRecord{}).Error
}

// DeleteExpired removes records past their expiry.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&entities.IdempotencyRecord{})
	return res.RowsAffected, res.Error
}

func toDomain(record *entities.IdempotencyRecord) *domain.Record {
	return &domain.Record{
		Key:       record.Key,
		Status:    domain.Status(record.Status),
		Result:    record.Result,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}
}
