package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CloserID uint `gorm:"not null;index" json:"closer_id"`
	Closer   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	LeadID *uint `gorm:"index" json:"lead_id"`
	Lead   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	// Sempre UTC.
	StartTime time.Time `gorm:"not null;index" json:"start_time"`

	Status  string `gorm:"size:20;default:'scheduled'" json:"status"`
	EventID *uint  `json:"event_id"`

	CanceledAt  *time.Time `json:"canceled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
