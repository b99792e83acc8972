package models

import "time"

type Program struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Price  float64 `json:"price"`
	Active bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Enrollment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	StudentID   uint    `gorm:"index;not null" json:"student_id"`
	ProgramID   uint    `gorm:"index;not null" json:"program_id"`
	TotalAgreed float64 `json:"total_agreed"`
	Status      string  `gorm:"size:20;default:'active'" json:"status"`

	Payments []Payment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const PaymentStatusCompleted = "completed"

type Payment struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	EnrollmentID uint    `gorm:"index;not null" json:"enrollment_id"`
	Amount       float64 `json:"amount"`
	Status       string  `gorm:"size:20;default:'completed'" json:"status"`
	PaymentType  string  `gorm:"size:20" json:"payment_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
