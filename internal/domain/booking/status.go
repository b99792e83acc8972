package booking

import (
	"time"

	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled     Status = "scheduled"
	StatusCanceled      Status = "canceled"
	StatusCompleted     Status = "completed"
	StatusPendingSurvey Status = "pending_survey"
)

// Active indica se o agendamento ainda ocupa o horário.
func (s Status) Active() bool {
	return s != StatusCanceled
}

func CanCancel(current Status) error {
	if current != StatusScheduled && current != StatusPendingSurvey {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}

// Cancel libera o horário para nova resolução.
func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCanceled)
	ap.CanceledAt = &now
	return nil
}

func CanComplete(current Status) error {
	if current != StatusScheduled && current != StatusPendingSurvey {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// Complete marca a reunião como realizada; o horário continua ocupado.
func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}
