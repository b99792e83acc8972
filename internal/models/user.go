package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleCloser  = "closer"
	RoleLead    = "lead"
	RoleStudent = "student"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:120" json:"name"`
	Username     string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;default:'lead';index" json:"role"`

	// Timezone só é relevante para closers (disponibilidade em hora local).
	Timezone string `gorm:"size:64" json:"timezone"`

	LeadProfile *LeadProfile `gorm:"foreignKey:UserID" json:"lead_profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
