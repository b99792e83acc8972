package payment

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	bookingdomain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/payment"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateEnrollmentInput struct {
	StudentID   uint
	ProgramID   uint
	TotalAgreed float64 // zero usa o preço do programa
}

type AddPaymentInput struct {
	EnrollmentID uint
	Amount       float64
	Status       string
	PaymentType  string
}

// ======================================================
// SERVICE
// ======================================================

// Service registra matrículas e pagamentos lançados pelo admin.
// Toda alteração dispara o recálculo de status do lead.
type Service struct {
	repo       domain.Repository
	recomputer bookingdomain.StatusRecomputer
	audit      audit.Sink
	log        *logging.Logger
}

func NewService(
	repo domain.Repository,
	recomputer bookingdomain.StatusRecomputer,
	sink audit.Sink,
	log *logging.Logger,
) *Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{repo: repo, recomputer: recomputer, audit: sink, log: log}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(httperr.CodeNotFound)
	}
	return err
}

func (s *Service) recompute(ctx context.Context, userID uint) {
	if s.recomputer == nil {
		return
	}
	if err := s.recomputer.Recompute(ctx, userID); err != nil {
		s.log.Error("lead status recompute failed", "user_id", userID, "error", err)
	}
}

func (s *Service) CreateEnrollment(ctx context.Context, in CreateEnrollmentInput) (*models.Enrollment, error) {
	if _, err := s.repo.GetUser(ctx, in.StudentID); err != nil {
		return nil, notFound(err)
	}

	program, err := s.repo.GetProgram(ctx, in.ProgramID)
	if err != nil {
		return nil, notFound(err)
	}

	total := in.TotalAgreed
	if total <= 0 {
		total = program.Price
	}

	e := &models.Enrollment{
		StudentID:   in.StudentID,
		ProgramID:   program.ID,
		TotalAgreed: total,
		Status:      "active",
	}
	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		return nil, err
	}

	s.recompute(ctx, e.StudentID)
	return e, nil
}

func (s *Service) AddPayment(ctx context.Context, in AddPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, httperr.ErrBusinessDetail(httperr.CodeInvalidState, "amount must be positive")
	}

	e, err := s.repo.GetEnrollment(ctx, in.EnrollmentID)
	if err != nil {
		return nil, notFound(err)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.PaymentStatusCompleted
	}

	p := &models.Payment{
		EnrollmentID: e.ID,
		Amount:       in.Amount,
		Status:       status,
		PaymentType:  in.PaymentType,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	s.recompute(ctx, e.StudentID)
	return p, nil
}

// DeletePayment apaga o pagamento e, se a matrícula ficar sem nenhum, apaga a matrícula também.
func (s *Service) DeletePayment(ctx context.Context, actorID, paymentID uint) (orphanRemoved bool, err error) {
	var studentID uint

	err = s.repo.Transaction(ctx, func(tx domain.Repository) error {
		p, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return notFound(err)
		}

		e, err := tx.GetEnrollment(ctx, p.EnrollmentID)
		if err != nil {
			return notFound(err)
		}
		studentID = e.StudentID

		if err := tx.DeletePayment(ctx, p.ID); err != nil {
			return err
		}

		left, err := tx.CountPayments(ctx, e.ID)
		if err != nil {
			return err
		}
		if left == 0 {
			if err := tx.DeleteEnrollment(ctx, e.ID); err != nil {
				return err
			}
			orphanRemoved = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   audit.ActionPaymentDeleted,
		Entity:   "payment",
		EntityID: &paymentID,
		Metadata: map[string]any{"orphan_enrollment_removed": orphanRemoved},
	})

	s.recompute(ctx, studentID)
	return orphanRemoved, nil
}

func (s *Service) DeleteEnrollment(ctx context.Context, actorID, enrollmentID uint) error {
	var studentID uint

	err := s.repo.Transaction(ctx, func(tx domain.Repository) error {
		e, err := tx.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return notFound(err)
		}
		studentID = e.StudentID
		return tx.DeleteEnrollment(ctx, e.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Dispatch(audit.Event{
		ActorID:  &actorID,
		Action:   audit.ActionEnrollmentDeleted,
		Entity:   "enrollment",
		EntityID: &enrollmentID,
	})

	s.recompute(ctx, studentID)
	return nil
}
