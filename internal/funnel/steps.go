package funnel

import (
	"context"

	"github.com/BruksfildServices01/booking-crm/internal/dto"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	booking "github.com/BruksfildServices01/booking-crm/internal/usecase/booking"
)

// UseCases são as operações que cada passo delega.
type UseCases struct {
	Identify       *booking.IdentifyLead
	Contact        *booking.UpsertContact
	ContactPrefill *booking.GetContactPrefill
	ListSurvey     *booking.ListSurvey
	SubmitSurvey   *booking.SubmitSurvey
	ResolveSlots   *booking.ResolveSlots
	ClaimSlot      *booking.ClaimSlot
}

// Flow liga o controlador aos casos de uso. Entrada só é aceita no passo
// atual; erro de entrada ou conflito não move o visitante.
type Flow struct {
	*Controller
	uc UseCases
}

func NewFlow(c *Controller, uc UseCases) *Flow {
	return &Flow{Controller: c, uc: uc}
}

// ===============================
// identify
// ===============================

func (fl *Flow) Identify(ctx context.Context, f *session.Funnel, email string) (*State, *models.User, error) {
	if err := fl.Expect(ctx, f, StepIdentify); err != nil {
		return nil, nil, err
	}

	user, err := fl.uc.Identify.Execute(ctx, f, email)
	if err != nil {
		return nil, nil, err
	}

	st, err := fl.Advance(ctx, f)
	return st, user, err
}

// ===============================
// contact_details
// ===============================

func (fl *Flow) ContactForm(ctx context.Context, f *session.Funnel) (*booking.ContactPrefill, error) {
	if err := fl.Expect(ctx, f, StepContactDetails); err != nil {
		return nil, err
	}
	return fl.uc.ContactPrefill.Execute(ctx, f)
}

func (fl *Flow) SubmitContact(ctx context.Context, f *session.Funnel, in booking.ContactInput) (*State, error) {
	if err := fl.Expect(ctx, f, StepContactDetails); err != nil {
		return nil, err
	}

	if _, err := fl.uc.Contact.Execute(ctx, f, in); err != nil {
		return nil, err
	}

	return fl.Advance(ctx, f)
}

// ===============================
// survey
// ===============================

func (fl *Flow) Survey(ctx context.Context, f *session.Funnel) (*booking.SurveyView, error) {
	if err := fl.Expect(ctx, f, StepSurvey); err != nil {
		return nil, err
	}
	return fl.uc.ListSurvey.Execute(ctx, f)
}

func (fl *Flow) SubmitSurvey(ctx context.Context, f *session.Funnel, answers map[uint]string) (*State, error) {
	if err := fl.Expect(ctx, f, StepSurvey); err != nil {
		return nil, err
	}

	if _, err := fl.uc.SubmitSurvey.Execute(ctx, f, answers); err != nil {
		return nil, err
	}

	return fl.Advance(ctx, f)
}

// ===============================
// calendar
// ===============================

func (fl *Flow) Calendar(ctx context.Context, f *session.Funnel) ([]dto.SlotDTO, error) {
	if err := fl.Expect(ctx, f, StepCalendar); err != nil {
		return nil, err
	}

	preferred, err := f.PreferredCloserID(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := fl.uc.ResolveSlots.Execute(ctx, preferred)
	if err != nil {
		return nil, err
	}
	return dto.SlotsFromDomain(slots), nil
}

func (fl *Flow) SelectSlot(ctx context.Context, f *session.Funnel, in booking.ClaimSlotInput) (*State, *booking.ClaimSlotResult, error) {
	if err := fl.Expect(ctx, f, StepCalendar); err != nil {
		return nil, nil, err
	}

	res, err := fl.uc.ClaimSlot.Execute(ctx, f, in)
	if err != nil {
		return nil, nil, err
	}

	st, err := fl.Advance(ctx, f)
	return st, res, err
}
