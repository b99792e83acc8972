package dto

import "time"

type AppointmentListDTO struct {
	ID        uint      `json:"id"`
	StartTime time.Time `json:"start_time"`
	LocalTime string    `json:"local_time"`
	Status    string    `json:"status"`
	LeadName  string    `json:"lead_name"`
	LeadEmail string    `json:"lead_email"`
	EventID   *uint     `json:"event_id"`
}
