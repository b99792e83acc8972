package leadstatus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/testutil"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, models.LeadStatusNew, statusFor(nil))
	assert.Equal(t, models.LeadStatusPending, statusFor([]enrollmentBalance{
		{TotalAgreed: 100, Paid: 100},
		{TotalAgreed: 50, Paid: 10},
	}))
	assert.Equal(t, models.LeadStatusCompleted, statusFor([]enrollmentBalance{
		{TotalAgreed: 100, Paid: 120},
	}))
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewRecomputer(gdb)

	lead := testutil.CreateLead(t, gdb, "lead@example.com")
	status := func() string {
		var p models.LeadProfile
		require.NoError(t, gdb.Where("user_id = ?", lead.ID).First(&p).Error)
		return p.Status
	}

	require.NoError(t, r.Recompute(ctx, lead.ID))
	assert.Equal(t, models.LeadStatusNew, status())

	program := models.Program{Name: "Mentoría", Price: 100}
	require.NoError(t, gdb.Create(&program).Error)
	enr := models.Enrollment{StudentID: lead.ID, ProgramID: program.ID, TotalAgreed: 100}
	require.NoError(t, gdb.Create(&enr).Error)

	require.NoError(t, r.Recompute(ctx, lead.ID))
	assert.Equal(t, models.LeadStatusPending, status())

	require.NoError(t, gdb.Create(&models.Payment{EnrollmentID: enr.ID, Amount: 60, Status: "refunded"}).Error)
	require.NoError(t, r.Recompute(ctx, lead.ID))
	assert.Equal(t, models.LeadStatusPending, status())

	require.NoError(t, gdb.Create(&models.Payment{EnrollmentID: enr.ID, Amount: 100, Status: models.PaymentStatusCompleted}).Error)
	require.NoError(t, r.Recompute(ctx, lead.ID))
	assert.Equal(t, models.LeadStatusCompleted, status())
}

func TestRecomputeWithoutProfileIsNoop(t *testing.T) {
	gdb := testutil.NewDB(t)
	closer := testutil.CreateCloser(t, gdb, "ana", "")

	assert.NoError(t, NewRecomputer(gdb).Recompute(context.Background(), closer.ID))
}
