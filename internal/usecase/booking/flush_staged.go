package booking

import (
	"context"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
)

type FlushResult struct {
	Appointment *models.Appointment
	SlotLost    bool // havia horário pendente, mas já estava ocupado
	Answers     int
}

// FlushStaged persiste o que o visitante escolheu antes de ser identificado
// e limpa essa área da sessão. Repetir a chamada não duplica nada.
type FlushStaged struct {
	repo    domain.Repository
	effects Effects
}

func NewFlushStaged(repo domain.Repository, effects Effects) *FlushStaged {
	return &FlushStaged{repo: repo, effects: effects.withDefaults()}
}

// Execute devolve o erro do flush, mas antes descarta o que sobrou na área
// pendente: a sessão já aponta para o lead e não pode guardar dados órfãos.
func (uc *FlushStaged) Execute(
	ctx context.Context,
	f *session.Funnel,
	userID uint,
) (*FlushResult, error) {

	res, err := uc.flush(ctx, f, userID)
	if err != nil {
		uc.discard(ctx, f, userID, err)
		return nil, err
	}
	return res, nil
}

func (uc *FlushStaged) discard(ctx context.Context, f *session.Funnel, userID uint, cause error) {
	uc.effects.Log.Error("flush failed, discarding staged data", "user_id", userID, "error", cause)

	if err := f.ClearStagedSlot(ctx); err != nil {
		uc.effects.Log.Error("session: clear staged slot", "user_id", userID, "error", err)
	}
	if err := f.ClearStagedAnswers(ctx); err != nil {
		uc.effects.Log.Error("session: clear staged answers", "user_id", userID, "error", err)
	}
}

func (uc *FlushStaged) flush(
	ctx context.Context,
	f *session.Funnel,
	userID uint,
) (*FlushResult, error) {

	res := &FlushResult{}

	// --------------------------------------------------
	// 1. Horário pendente → agendamento
	// --------------------------------------------------
	slot, err := f.StagedSlot(ctx)
	if err != nil {
		return nil, err
	}

	if slot != nil {
		if err := uc.flushSlot(ctx, f, userID, *slot, res); err != nil {
			return nil, err
		}
		if err := f.ClearStagedSlot(ctx); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 2. Respostas pendentes → survey_answers
	// --------------------------------------------------
	staged, err := f.StagedAnswers(ctx)
	if err != nil {
		return nil, err
	}

	if len(staged) > 0 {
		apptID, err := f.CurrentAppointmentID(ctx)
		if err != nil {
			return nil, err
		}

		rows := make([]models.SurveyAnswer, 0, len(staged))
		for _, a := range staged {
			rows = append(rows, models.SurveyAnswer{
				LeadID:        userID,
				QuestionID:    a.QuestionID,
				Answer:        a.Answer,
				AppointmentID: apptID,
			})
		}

		if err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
			return tx.CreateAnswers(ctx, rows)
		}); err != nil {
			return nil, err
		}

		if err := f.ClearStagedAnswers(ctx); err != nil {
			return nil, err
		}
		res.Answers = len(rows)
	}

	return res, nil
}

func (uc *FlushStaged) flushSlot(
	ctx context.Context,
	f *session.Funnel,
	userID uint,
	slot session.StagedSlot,
	res *FlushResult,
) error {

	start, err := slot.StartUTC()
	if err != nil {
		// horário corrompido na sessão: descarta
		uc.effects.Log.Warn("discarding unparseable staged slot", "utc_iso", slot.UTCISO)
		return nil
	}

	eventID, err := f.EventID(ctx)
	if err != nil {
		return err
	}

	ap, err := claimInTx(ctx, uc.repo, slot.CloserID, start, userID, eventID)
	if httperr.IsConflict(err) {
		res.SlotLost = true
		uc.effects.Log.Info("staged slot taken before flush",
			"closer_id", slot.CloserID, "start_time", start, "user_id", userID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := f.SetCurrentAppointmentID(ctx, ap.ID); err != nil {
		return err
	}

	res.Appointment = ap
	uc.effects.appointmentCreated(ctx, ap, &userID)
	return nil
}
