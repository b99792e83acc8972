package booking

import (
	"context"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

// SurveyStep é o passo cujas perguntas o funil exibe.
const SurveyStep = "survey"

// Effects agrupa os colaboradores chamados depois do commit.
// Nenhum deles pode desfazer ou falhar um agendamento.
type Effects struct {
	Notifier   domain.Notifier
	Recomputer domain.StatusRecomputer
	Audit      audit.Sink
	Metrics    *metrics.BookingMetrics
	Log        *logging.Logger
}

func (e Effects) withDefaults() Effects {
	if e.Notifier == nil {
		e.Notifier = domain.NopNotifier{}
	}
	if e.Audit == nil {
		e.Audit = audit.NopSink{}
	}
	if e.Log == nil {
		e.Log = logging.Discard()
	}
	return e
}

func (e Effects) appointmentCreated(ctx context.Context, ap *models.Appointment, actorID *uint) {
	e.Notifier.Notify(ap, domain.EventAppointmentCreated)
	if ap.LeadID != nil {
		e.recompute(ctx, *ap.LeadID)
	}
	e.Audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionAppointmentCreated,
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"closer_id":  ap.CloserID,
			"start_time": ap.StartTime.UTC(),
		},
	})
}

func (e Effects) recompute(ctx context.Context, userID uint) {
	if e.Recomputer == nil {
		return
	}
	if err := e.Recomputer.Recompute(ctx, userID); err != nil {
		e.Log.Error("lead status recompute failed", "user_id", userID, "error", err)
	}
}
