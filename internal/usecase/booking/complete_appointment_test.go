package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/testutil"
)

func TestCompleteAppointment(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	x := testutil.CreateCloser(t, e.db, "x", "UTC")
	admin := testutil.CreateCloser(t, e.db, "boss", "UTC")
	lead := testutil.CreateLead(t, e.db, "lead@example.com")

	ap := &models.Appointment{CloserID: x.ID, LeadID: &lead.ID, StartTime: slotJune1, Status: "scheduled"}
	require.NoError(t, e.repo.CreateAppointment(ctx, ap))

	complete := NewCompleteAppointment(e.repo, e.effects)

	_, err := complete.Execute(ctx, 9999, models.RoleCloser, ap.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))

	done, err := complete.Execute(ctx, admin.ID, models.RoleAdmin, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	assert.NotNil(t, done.CompletedAt)

	// continua ocupando o horário
	active, err := e.repo.FindActiveAppointment(ctx, x.ID, slotJune1)
	require.NoError(t, err)
	require.NotNil(t, active)

	_, err = complete.Execute(ctx, x.ID, models.RoleCloser, ap.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))

	// cancelar depois de concluído não é permitido
	_, err = NewCancelAppointment(e.repo, e.effects).Execute(ctx, x.ID, models.RoleCloser, ap.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
}
