package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/payment"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentGormRepository{db: tx})
	})
}

func (r *PaymentGormRepository) GetProgram(ctx context.Context, id uint) (*models.Program, error) {
	var p models.Program
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// --------------------------------------------------
// Enrollment
// --------------------------------------------------

func (r *PaymentGormRepository) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PaymentGormRepository) GetEnrollment(ctx context.Context, id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := r.db.WithContext(ctx).Preload("Payments").First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEnrollment remove os pagamentos antes da matrícula.
func (r *PaymentGormRepository) DeleteEnrollment(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", id).
		Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Enrollment{}, id).Error
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *PaymentGormRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentGormRepository) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) DeletePayment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

func (r *PaymentGormRepository) CountPayments(ctx context.Context, enrollmentID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Compile-time check
var _ domain.Repository = (*PaymentGormRepository)(nil)
