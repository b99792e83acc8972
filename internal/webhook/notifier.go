package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

type AppointmentPayload struct {
	ID        uint   `json:"id"`
	CloserID  uint   `json:"closer_id"`
	LeadID    *uint  `json:"lead_id"`
	StartTime string `json:"start_time"`
	Status    string `json:"status"`
	EventID   *uint  `json:"event_id"`
}

type Envelope struct {
	Event       string             `json:"event"`
	Appointment AppointmentPayload `json:"appointment"`
	SentAt      string             `json:"sent_at"`
}

// Notifier envia webhooks de calendário em background.
// Falhas são registradas e contadas, nunca devolvidas a quem agendou.
type Notifier struct {
	db      *gorm.DB
	client  *http.Client
	log     *logging.Logger
	metrics *metrics.BookingMetrics

	queue chan Envelope
	wg    sync.WaitGroup
	once  sync.Once
}

func NewNotifier(
	db *gorm.DB,
	timeout time.Duration,
	queueSize int,
	log *logging.Logger,
	m *metrics.BookingMetrics,
) *Notifier {
	if queueSize <= 0 {
		queueSize = 100
	}

	n := &Notifier{
		db:      db,
		client:  &http.Client{Timeout: timeout},
		log:     log,
		metrics: m,
		queue:   make(chan Envelope, queueSize),
	}

	n.wg.Add(1)
	go n.worker()
	return n
}

func (n *Notifier) Notify(ap *models.Appointment, event string) {
	if ap == nil {
		return
	}

	env := Envelope{
		Event: event,
		Appointment: AppointmentPayload{
			ID:        ap.ID,
			CloserID:  ap.CloserID,
			LeadID:    ap.LeadID,
			StartTime: ap.StartTime.UTC().Format(time.RFC3339),
			Status:    ap.Status,
			EventID:   ap.EventID,
		},
		SentAt: time.Now().UTC().Format(time.RFC3339),
	}

	select {
	case n.queue <- env:
	default:
		n.metrics.ObserveQueueDrop("webhook")
		n.log.Warn("webhook queue full, dropping event", "event", event, "appointment_id", ap.ID)
	}
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for env := range n.queue {
		n.deliver(context.Background(), env)
	}
}

func (n *Notifier) deliver(ctx context.Context, env Envelope) {
	var hooks []models.Integration
	if err := n.db.WithContext(ctx).
		Where("kind = ? AND active = ?", models.IntegrationCalendarWebhook, true).
		Find(&hooks).Error; err != nil {
		n.log.Error("webhook: load integrations", "error", err)
		n.metrics.ObserveWebhook(env.Event, "error")
		return
	}

	body, err := json.Marshal(env)
	if err != nil {
		n.log.Error("webhook: encode payload", "error", err)
		return
	}

	for _, h := range hooks {
		if err := n.post(ctx, h.URL, body); err != nil {
			n.log.Warn("webhook delivery failed",
				"integration_id", h.ID,
				"event", env.Event,
				"appointment_id", env.Appointment.ID,
				"error", err,
			)
			n.metrics.ObserveWebhook(env.Event, "error")
			continue
		}
		n.metrics.ObserveWebhook(env.Event, "ok")
	}
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close drena a fila e espera as entregas pendentes.
func (n *Notifier) Close() {
	n.once.Do(func() {
		close(n.queue)
	})
	n.wg.Wait()
}
