package models

import "time"

const IntegrationCalendarWebhook = "calendar_webhook"

type Integration struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Kind   string `gorm:"size:50;index;not null" json:"kind"`
	URL    string `gorm:"size:500;not null" json:"url"`
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
