package models

import "time"

type SurveyQuestion struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"size:255;not null" json:"text"`
	Step     string `gorm:"size:30;default:'survey'" json:"step"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
	Order    int    `gorm:"column:sort_order" json:"order"`

	EventID      *uint `gorm:"index" json:"event_id"`
	EventGroupID *uint `gorm:"index" json:"event_group_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SurveyAnswer struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	LeadID        uint   `gorm:"index;not null" json:"lead_id"`
	QuestionID    uint   `gorm:"index;not null" json:"question_id"`
	Answer        string `gorm:"type:text" json:"answer"`
	AppointmentID *uint  `gorm:"index" json:"appointment_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
