package entities

import "time"

// IdempotencyRecord caches the outcome of a guarded execution. The unique key
// constraint is what makes concurrent claims race-safe: of two inserts for
// the same key, one loses with a unique violation and reads the winner's row.
type IdempotencyRecord struct {
	Key       string    `gorm:"primaryKey;size:300"`
	Status    string    `gorm:"size:16;not null"`
	Result    []byte    `gorm:"type:bytea"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
