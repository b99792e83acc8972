package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

type CancelAppointment struct {
	repo    domain.Repository
	effects Effects
}

func NewCancelAppointment(repo domain.Repository, effects Effects) *CancelAppointment {
	return &CancelAppointment{repo: repo, effects: effects.withDefaults()}
}

// Execute cancela e libera o horário. Closer só cancela os próprios; admin cancela qualquer um.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actorID uint,
	actorRole string,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := appointmentForActor(ctx, uc.repo, actorID, actorRole, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(ap, timezone.NowUTC()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.effects.Notifier.Notify(ap, domain.EventAppointmentCanceled)
	if ap.LeadID != nil {
		uc.effects.recompute(ctx, *ap.LeadID)
	}
	uc.effects.Audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   audit.ActionAppointmentCanceled,
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

// appointmentForActor esconde de um closer os agendamentos de outros closers.
func appointmentForActor(
	ctx context.Context,
	repo domain.AppointmentStore,
	actorID uint,
	actorRole string,
	appointmentID uint,
) (*models.Appointment, error) {
	ap, err := repo.GetAppointment(ctx, appointmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	if err != nil {
		return nil, err
	}

	if actorRole != models.RoleAdmin && ap.CloserID != actorID {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	return ap, nil
}
