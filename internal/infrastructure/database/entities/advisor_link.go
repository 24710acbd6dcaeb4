package entities

import "time"

// AdvisorLink associates an advisor with its owning user. One row per advisor.
type AdvisorLink struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:128;not null;index"`
	AdvisorID string    `gorm:"size:64;not null;uniqueIndex"`
	Source    string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AdvisorLink) TableName() string {
	return "advisor_links"
}
