package entities

import "time"

// RateLimit counts calls by one actor for one action in the current fixed
// window. Updated only through an atomic upsert keyed on (actor_id, action).
type RateLimit struct {
	ActorID     string    `gorm:"primaryKey;size:128"`
	Action      string    `gorm:"primaryKey;size:64"`
	WindowStart time.Time `gorm:"not null"`
	Count       int64     `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (RateLimit) TableName() string {
	return "rate_limits"
}
