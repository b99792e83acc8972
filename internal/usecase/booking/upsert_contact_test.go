package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/testutil"
)

func profileOf(t *testing.T, e *env, userID uint) models.LeadProfile {
	t.Helper()
	var p models.LeadProfile
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&p).Error)
	return p
}

func TestUpsertContact_CreatesLeadFromStagedEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	f := newFunnel()
	require.NoError(t, f.SetUTM(ctx, "ig_junio"))
	require.NoError(t, f.SetEmailInput(ctx, "maria@example.com"))

	user, err := e.contact.Execute(ctx, f, ContactInput{
		Name: "María", Email: "ignored@example.com", PhoneCode: "+591", Phone: "71234567", Instagram: "@maria",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, "María", user.Username)
	assert.Equal(t, models.RoleLead, user.Role)
	assert.NotEmpty(t, user.PasswordHash)

	p := profileOf(t, e, user.ID)
	assert.Equal(t, "+591 71234567", p.Phone)
	assert.Equal(t, "@maria", p.Instagram)
	assert.Equal(t, "ig_junio", p.UTMSource)
	assert.Equal(t, models.LeadStatusNew, p.Status)

	uid, err := f.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, *uid)

	email, err := f.EmailInput(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestUpsertContact_PayloadEmailAndDefaultUTM(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	f := newFunnel()

	user, err := e.contact.Execute(ctx, f, ContactInput{Email: " Pedro@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "pedro@example.com", user.Email)
	assert.Equal(t, "pedro", user.Username)

	p := profileOf(t, e, user.ID)
	assert.Equal(t, "direct", p.UTMSource)
	assert.Empty(t, p.Phone)
}

func TestUpsertContact_MissingIdentity(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.contact.Execute(ctx, newFunnel(), ContactInput{Name: "Sin correo"})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeMissingIdentity))

	var count int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertContact_ExistingKeepsValuesAndUTM(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	lead := testutil.CreateLead(t, e.db, "lead@example.com")
	require.NoError(t, e.db.Model(&models.LeadProfile{}).
		Where("user_id = ?", lead.ID).
		Updates(map[string]any{"phone": "+591 700", "instagram": "@old", "utm_source": "fb"}).Error)

	f := newFunnel()
	require.NoError(t, f.SetUserID(ctx, lead.ID))
	require.NoError(t, f.SetUTM(ctx, "ig"))

	user, err := e.contact.Execute(ctx, f, ContactInput{Name: "Lead Nuevo Nombre", PhoneCode: "+591", Phone: "", Instagram: "@new"})
	require.NoError(t, err)
	assert.Equal(t, "Lead Nuevo Nombre", user.Name)

	p := profileOf(t, e, lead.ID)
	assert.Equal(t, "+591 700", p.Phone)
	assert.Equal(t, "@new", p.Instagram)
	assert.Equal(t, "fb", p.UTMSource)

	var stored models.User
	require.NoError(t, e.db.First(&stored, lead.ID).Error)
	assert.Equal(t, "Lead Nuevo Nombre", stored.Name)
	assert.Equal(t, lead.Username, stored.Username)
}

func TestUpsertContact_ExistingWithoutProfileGetsOne(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := &models.User{Username: "legacy", Email: "legacy@example.com", PasswordHash: "x", Role: models.RoleLead}
	require.NoError(t, e.db.Create(u).Error)

	f := newFunnel()
	require.NoError(t, f.SetUserID(ctx, u.ID))
	require.NoError(t, f.SetUTM(ctx, "webinar"))

	_, err := e.contact.Execute(ctx, f, ContactInput{PhoneCode: "+57", Phone: "300"})
	require.NoError(t, err)

	p := profileOf(t, e, u.ID)
	assert.Equal(t, "+57 300", p.Phone)
	assert.Equal(t, "webinar", p.UTMSource)
	assert.Equal(t, models.LeadStatusNew, p.Status)
}

func TestUpsertContact_UsernameCollisionTerminates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	for _, name := range []string{"Carlos", "Carlos_1234"} {
		require.NoError(t, e.db.Create(&models.User{
			Username: name, Email: strings.ToLower(name) + "@taken.com", PasswordHash: "x",
		}).Error)
	}

	e.contact.suffix = func() int { return 1234 }

	f := newFunnel()
	require.NoError(t, f.SetEmailInput(ctx, "carlos@example.com"))

	user, err := e.contact.Execute(ctx, f, ContactInput{Name: "Carlos"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.Username, "lead_"), user.Username)

	f2 := newFunnel()
	require.NoError(t, f2.SetEmailInput(ctx, "carlos2@example.com"))
	n := 5000
	e.contact.suffix = func() int { n++; return n }

	user2, err := e.contact.Execute(ctx, f2, ContactInput{Name: "Carlos"})
	require.NoError(t, err)
	assert.Equal(t, "Carlos_5001", user2.Username)
}

func TestUsernameBaseIsTruncated(t *testing.T) {
	long := strings.Repeat("ñ", 80)
	assert.Len(t, []rune(usernameBase(long, "x@y.com")), usernameBaseMax)
	assert.Equal(t, "juan.perez", usernameBase("  ", "juan.perez@example.com"))
}

func TestUpsertContact_FlushesStagedAnswersWithAppointment(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	closer := testutil.CreateCloser(t, e.db, "ana", "")
	f := newFunnel()

	require.NoError(t, f.StageAnswers(ctx,
		session.StagedAnswer{QuestionID: 1, Answer: "Emprender"},
		session.StagedAnswer{QuestionID: 2, Answer: "1000 USD"},
	))
	require.NoError(t, f.StageSlot(ctx, closer.ID, slotJune1))
	require.NoError(t, f.SetEmailInput(ctx, "staged@example.com"))

	user, err := e.contact.Execute(ctx, f, ContactInput{Name: "Staged"})
	require.NoError(t, err)

	apps := e.activeAppointments(t)
	require.Len(t, apps, 1)

	var answers []models.SurveyAnswer
	require.NoError(t, e.db.Order("question_id").Find(&answers).Error)
	require.Len(t, answers, 2)
	for _, a := range answers {
		assert.Equal(t, user.ID, a.LeadID)
		require.NotNil(t, a.AppointmentID)
		assert.Equal(t, apps[0].ID, *a.AppointmentID)
	}

	left, err := f.StagedAnswers(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = e.flush.Execute(ctx, f, user.ID)
	require.NoError(t, err)
	var count int64
	require.NoError(t, e.db.Model(&models.SurveyAnswer{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestFlush_StagedSlotTakenMeanwhile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	closer := testutil.CreateCloser(t, e.db, "ana", "")
	lead := testutil.CreateLead(t, e.db, "lead@example.com")

	require.NoError(t, e.repo.CreateAppointment(ctx, &models.Appointment{
		CloserID: closer.ID, StartTime: slotJune1, Status: "scheduled",
	}))

	f := newFunnel()
	require.NoError(t, f.StageSlot(ctx, closer.ID, slotJune1))

	res, err := e.flush.Execute(ctx, f, lead.ID)
	require.NoError(t, err)
	assert.True(t, res.SlotLost)
	assert.Nil(t, res.Appointment)

	staged, err := f.StagedSlot(ctx)
	require.NoError(t, err)
	assert.Nil(t, staged)
	assert.Len(t, e.activeAppointments(t), 1)
}

// brokenAnswersRepo falha ao gravar respostas, dentro ou fora de transação.
type brokenAnswersRepo struct {
	domain.Repository
}

func (brokenAnswersRepo) CreateAnswers(context.Context, []models.SurveyAnswer) error {
	return errors.New("disk full")
}

func (r brokenAnswersRepo) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx domain.Repository) error {
		return fn(brokenAnswersRepo{tx})
	})
}

func TestUpsertContact_FailedFlushLeavesNothingStaged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	closer := testutil.CreateCloser(t, e.db, "ana", "")

	flush := NewFlushStaged(brokenAnswersRepo{e.repo}, e.effects)
	contact := NewUpsertContact(e.repo, flush, nil, "direct")

	f := newFunnel()
	require.NoError(t, f.StageAnswers(ctx, session.StagedAnswer{QuestionID: 1, Answer: "Emprender"}))
	require.NoError(t, f.StageSlot(ctx, closer.ID, slotJune1))
	require.NoError(t, f.SetEmailInput(ctx, "broken@example.com"))

	_, err := contact.Execute(ctx, f, ContactInput{Name: "Broken"})
	require.Error(t, err)
	assert.False(t, httperr.IsConflict(err))

	uid, err := f.UserID(ctx)
	require.NoError(t, err)
	require.NotNil(t, uid)

	staged, err := f.StagedSlot(ctx)
	require.NoError(t, err)
	assert.Nil(t, staged)

	answers, err := f.StagedAnswers(ctx)
	require.NoError(t, err)
	assert.Empty(t, answers)

	// o horário foi gravado antes da falha nas respostas
	assert.Len(t, e.activeAppointments(t), 1)

	var count int64
	require.NoError(t, e.db.Model(&models.SurveyAnswer{}).Count(&count).Error)
	assert.Zero(t, count)

	// nova tentativa não encontra nada pendente
	res, err := flush.Execute(ctx, f, *uid)
	require.NoError(t, err)
	assert.Nil(t, res.Appointment)
	assert.Zero(t, res.Answers)
}

func TestFullPhone(t *testing.T) {
	assert.Equal(t, "+591 70000000", FullPhone("+591", " 70000000 "))
	assert.Equal(t, "70000000", FullPhone("", "70000000"))
	assert.Empty(t, FullPhone("+591", ""))
}
