package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Advisor models the persisted representation of an advisor persona.
// The (owner_id, handle) pair is unique: handle collisions are resolved by
// the domain layer with deterministic suffixes, never by overwrite.
type Advisor struct {
	ID          string         `gorm:"primaryKey;size:64"`
	OwnerID     string         `gorm:"size:128;not null;index;uniqueIndex:idx_advisors_owner_handle"`
	Handle      string         `gorm:"size:64;not null;uniqueIndex:idx_advisors_owner_handle"`
	Name        string         `gorm:"size:120;not null"`
	OneLiner    string         `gorm:"size:200"`
	Mission     string         `gorm:"type:text;not null"`
	AvatarURL   string         `gorm:"size:500"`
	WebsiteURL  string         `gorm:"size:500"`
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	AdviceStyle string         `gorm:"size:32;not null"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Advisor) TableName() string {
	return "advisors"
}
