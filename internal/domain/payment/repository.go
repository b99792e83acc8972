package payment

import (
	"context"

	"github.com/BruksfildServices01/booking-crm/internal/models"
)

type Repository interface {
	GetProgram(ctx context.Context, id uint) (*models.Program, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)

	CreateEnrollment(ctx context.Context, e *models.Enrollment) error
	GetEnrollment(ctx context.Context, id uint) (*models.Enrollment, error)
	DeleteEnrollment(ctx context.Context, id uint) error

	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	DeletePayment(ctx context.Context, id uint) error
	CountPayments(ctx context.Context, enrollmentID uint) (int64, error)

	Transaction(ctx context.Context, fn func(tx Repository) error) error
}
