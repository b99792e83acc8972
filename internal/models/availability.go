package models

import "time"

// Availability é um horário de início bookável no fuso local do closer.
type Availability struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CloserID uint `gorm:"index:idx_availability_closer_date,priority:1;not null" json:"closer_id"`
	Closer   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Date      string `gorm:"size:10;index:idx_availability_closer_date,priority:2;not null" json:"date"` // YYYY-MM-DD
	StartTime string `gorm:"size:5;not null" json:"start_time"`                                          // HH:MM

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
