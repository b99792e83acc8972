package metrics

import "github.com/prometheus/client_golang/prometheus"

// Resultados de uma tentativa de reserva.
const (
	ClaimCreated  = "created"
	ClaimStaged   = "staged"
	ClaimConflict = "conflict"
	ClaimError    = "error"
)

// BookingMetrics expõe contadores do funil e dos efeitos colaterais.
type BookingMetrics struct {
	slotClaims        *prometheus.CounterVec
	funnelSteps       *prometheus.CounterVec
	webhookDeliveries *prometheus.CounterVec
	queueDrops        *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		slotClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "funnel",
			Name:      "slot_claims_total",
			Help:      "Slot claim attempts by result",
		}, []string{"result"}),
		funnelSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "funnel",
			Name:      "step_views_total",
			Help:      "Funnel steps routed to visitors",
		}, []string{"step"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Calendar webhook deliveries by event and status",
		}, []string{"event", "status"}),
		queueDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "async",
			Name:      "queue_drops_total",
			Help:      "Events dropped because a background queue was full",
		}, []string{"queue"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotClaims, m.funnelSteps, m.webhookDeliveries, m.queueDrops)
	return m
}

func (m *BookingMetrics) ObserveClaim(result string) {
	if m == nil {
		return
	}
	m.slotClaims.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveStep(step string) {
	if m == nil {
		return
	}
	m.funnelSteps.WithLabelValues(step).Inc()
}

func (m *BookingMetrics) ObserveWebhook(event, status string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(event, status).Inc()
}

func (m *BookingMetrics) ObserveQueueDrop(queue string) {
	if m == nil {
		return
	}
	m.queueDrops.WithLabelValues(queue).Inc()
}
