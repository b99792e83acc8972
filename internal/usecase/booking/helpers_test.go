package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/infra/repository"
	"github.com/BruksfildServices01/booking-crm/internal/leadstatus"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/testutil"
)

var slotJune1 = time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

func beforeJune1() time.Time { return slotJune1.Add(-24 * time.Hour) }

type notification struct {
	appointmentID uint
	event         string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(ap *models.Appointment, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{ap.ID, event})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type env struct {
	db       *gorm.DB
	repo     domain.Repository
	notifier *recordingNotifier
	effects  Effects

	flush    *FlushStaged
	claim    *ClaimSlot
	identify *IdentifyLead
	contact  *UpsertContact
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	repo := repository.NewBookingGormRepository(gdb)
	n := &recordingNotifier{}
	effects := Effects{Notifier: n, Recomputer: leadstatus.NewRecomputer(gdb)}

	flush := NewFlushStaged(repo, effects)
	return &env{
		db:       gdb,
		repo:     repo,
		notifier: n,
		effects:  effects,
		flush:    flush,
		claim:    NewClaimSlot(repo, effects).WithClock(beforeJune1),
		identify: NewIdentifyLead(repo, flush),
		contact:  NewUpsertContact(repo, flush, nil, "direct"),
	}
}

func newFunnel() *session.Funnel {
	return session.NewFunnel(session.NewMemoryBag())
}

func (e *env) activeAppointments(t *testing.T) []models.Appointment {
	t.Helper()
	var apps []models.Appointment
	if err := e.db.Where("status <> ?", "canceled").Order("id").Find(&apps).Error; err != nil {
		t.Fatal(err)
	}
	return apps
}

// staleRepo simula uma leitura desatualizada: a checagem nunca vê conflito.
type staleRepo struct {
	domain.Repository
}

func (staleRepo) FindActiveAppointment(context.Context, uint, time.Time) (*models.Appointment, error) {
	return nil, nil
}

func (r staleRepo) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx domain.Repository) error {
		return fn(staleRepo{tx})
	})
}

type sessionFunnel = session.Funnel

func leadEmail(i int) string {
	return "lead" + string(rune('a'+i)) + "@example.com"
}
