package booking

import (
	"context"

	"github.com/BruksfildServices01/booking-crm/internal/models"
)

const (
	EventAppointmentCreated  = "created"
	EventAppointmentCanceled = "canceled"
)

// Notifier é fire-and-forget: falhas ficam no log.
type Notifier interface {
	Notify(ap *models.Appointment, event string)
}

type StatusRecomputer interface {
	Recompute(ctx context.Context, userID uint) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(*models.Appointment, string) {}
