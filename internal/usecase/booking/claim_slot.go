package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type ClaimSlotInput struct {
	CloserID uint
	UTCISO   string
}

type ClaimSlotResult struct {
	Appointment *models.Appointment // nil quando a escolha ficou pendente na sessão
	Staged      bool
}

// ======================================================
// USE CASE
// ======================================================

type ClaimSlot struct {
	repo    domain.Repository
	effects Effects
	now     func() time.Time
}

func NewClaimSlot(repo domain.Repository, effects Effects) *ClaimSlot {
	return &ClaimSlot{repo: repo, effects: effects.withDefaults(), now: timezone.NowUTC}
}

// WithClock troca o relógio (testes).
func (uc *ClaimSlot) WithClock(now func() time.Time) *ClaimSlot {
	uc.now = now
	return uc
}

// ParseSlotInstant aceita RFC3339 com ou sem fração de segundos.
func ParseSlotInstant(utcISO string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, utcISO)
	if err != nil {
		return time.Time{}, httperr.ErrBusinessDetail(httperr.CodeInvalidSlot, err.Error())
	}
	return t.UTC(), nil
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ClaimSlot) Execute(
	ctx context.Context,
	f *session.Funnel,
	in ClaimSlotInput,
) (*ClaimSlotResult, error) {

	if in.UTCISO == "" || in.CloserID == 0 {
		return nil, httperr.ErrBusiness(httperr.CodeMissingSlot)
	}

	start, err := ParseSlotInstant(in.UTCISO)
	if err != nil {
		return nil, err
	}

	if err := checkBookable(ctx, uc.repo, in.CloserID, start, uc.now()); err != nil {
		return nil, err
	}

	userID, err := f.UserID(ctx)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Visitante anônimo: só guarda a escolha
	// --------------------------------------------------
	if userID == nil {
		existing, err := uc.repo.FindActiveAppointment(ctx, in.CloserID, start)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			uc.conflict(in.CloserID, start)
			return nil, httperr.ErrBusiness(httperr.CodeSlotTaken)
		}

		if err := f.StageSlot(ctx, in.CloserID, start); err != nil {
			return nil, err
		}
		uc.effects.Metrics.ObserveClaim(metrics.ClaimStaged)
		return &ClaimSlotResult{Staged: true}, nil
	}

	// --------------------------------------------------
	// Lead identificado: checagem + insert na mesma transação
	// --------------------------------------------------
	eventID, err := f.EventID(ctx)
	if err != nil {
		return nil, err
	}

	ap, err := claimInTx(ctx, uc.repo, in.CloserID, start, *userID, eventID)
	if err != nil {
		if httperr.IsConflict(err) {
			uc.conflict(in.CloserID, start)
		} else {
			uc.effects.Metrics.ObserveClaim(metrics.ClaimError)
		}
		return nil, err
	}

	if err := f.SetCurrentAppointmentID(ctx, ap.ID); err != nil {
		uc.effects.Log.Error("session: store current appointment", "appointment_id", ap.ID, "error", err)
	}

	uc.effects.Metrics.ObserveClaim(metrics.ClaimCreated)
	uc.effects.appointmentCreated(ctx, ap, userID)

	return &ClaimSlotResult{Appointment: ap}, nil
}

func (uc *ClaimSlot) conflict(closerID uint, start time.Time) {
	uc.effects.Metrics.ObserveClaim(metrics.ClaimConflict)
	uc.effects.Log.Info("slot already taken", "closer_id", closerID, "start_time", start)
}

// checkBookable recusa o que o resolver nunca ofereceria: horário passado
// ou um id que não é de closer.
func checkBookable(
	ctx context.Context,
	users domain.LeadStore,
	closerID uint,
	start time.Time,
	now time.Time,
) error {
	if !start.After(now.UTC()) {
		return httperr.ErrBusinessDetail(httperr.CodeInvalidSlot, "slot in the past")
	}

	u, err := users.GetUser(ctx, closerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusinessDetail(httperr.CodeInvalidSlot, "unknown closer")
	}
	if err != nil {
		return err
	}
	if u.Role != models.RoleCloser {
		return httperr.ErrBusinessDetail(httperr.CodeInvalidSlot, "not a closer")
	}
	return nil
}

// claimInTx cria o agendamento se o horário ainda estiver livre.
// O índice único parcial é a garantia final; a violação vira slot_taken.
func claimInTx(
	ctx context.Context,
	repo domain.Repository,
	closerID uint,
	start time.Time,
	leadID uint,
	eventID *uint,
) (*models.Appointment, error) {

	var created *models.Appointment

	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		existing, err := tx.FindActiveAppointment(ctx, closerID, start)
		if err != nil {
			return err
		}
		if existing != nil {
			return httperr.ErrBusiness(httperr.CodeSlotTaken)
		}

		lead := leadID
		ap := &models.Appointment{
			CloserID:  closerID,
			LeadID:    &lead,
			StartTime: start,
			Status:    string(domain.InitialStatus()),
			EventID:   eventID,
		}
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrBusiness(httperr.CodeSlotTaken)
			}
			return err
		}

		created = ap
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
