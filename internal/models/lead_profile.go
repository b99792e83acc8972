package models

import "time"

const (
	LeadStatusNew       = "new"
	LeadStatusPending   = "pending"
	LeadStatusCompleted = "completed"
)

type LeadProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	Phone     string `gorm:"size:40" json:"phone"`
	Instagram string `gorm:"size:100" json:"instagram"`
	UTMSource string `gorm:"size:100" json:"utm_source"`
	Status    string `gorm:"size:20;default:'new'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
