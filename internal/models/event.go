package models

import "time"

type EventGroup struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Event struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	UTMSource string `gorm:"size:100;uniqueIndex;not null" json:"utm_source"`

	GroupID *uint       `json:"group_id"`
	Group   *EventGroup `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	// Apenas metadado; a ordem dos passos do funil é fixa no código.
	FunnelSteps string `gorm:"type:text" json:"funnel_steps"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
