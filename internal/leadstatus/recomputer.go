package leadstatus

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/models"
)

// Recomputer deriva o status do lead a partir das matrículas e pagamentos.
type Recomputer struct {
	db *gorm.DB
}

func NewRecomputer(db *gorm.DB) *Recomputer {
	return &Recomputer{db: db}
}

type enrollmentBalance struct {
	ID          uint
	TotalAgreed float64
	Paid        float64
}

// Recompute: sem matrícula → new; alguma dívida em aberto → pending; senão completed.
func (r *Recomputer) Recompute(ctx context.Context, userID uint) error {
	var profile models.LeadProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lead profile: %w", err)
	}

	var balances []enrollmentBalance
	if err := r.db.WithContext(ctx).
		Table("enrollments AS e").
		Select("e.id, e.total_agreed, COALESCE(SUM(p.amount), 0) AS paid").
		Joins("LEFT JOIN payments p ON p.enrollment_id = e.id AND p.status = ?", models.PaymentStatusCompleted).
		Where("e.student_id = ?", userID).
		Group("e.id, e.total_agreed").
		Scan(&balances).Error; err != nil {
		return fmt.Errorf("load enrollment balances: %w", err)
	}

	status := statusFor(balances)
	if status == profile.Status {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Model(&profile).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

func statusFor(balances []enrollmentBalance) string {
	if len(balances) == 0 {
		return models.LeadStatusNew
	}
	for _, b := range balances {
		if b.TotalAgreed-b.Paid > 0 {
			return models.LeadStatusPending
		}
	}
	return models.LeadStatusCompleted
}
