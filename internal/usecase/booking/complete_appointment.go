package booking

import (
	"context"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

type CompleteAppointment struct {
	repo    domain.Repository
	effects Effects
}

func NewCompleteAppointment(repo domain.Repository, effects Effects) *CompleteAppointment {
	return &CompleteAppointment{repo: repo, effects: effects.withDefaults()}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	actorID uint,
	actorRole string,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := appointmentForActor(ctx, uc.repo, actorID, actorRole, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Complete(ap, timezone.NowUTC()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if ap.LeadID != nil {
		uc.effects.recompute(ctx, *ap.LeadID)
	}
	uc.effects.Audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   audit.ActionAppointmentDone,
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
