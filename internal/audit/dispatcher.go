package audit

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
)

type Event struct {
	ActorID  *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Sink recebe eventos de auditoria sem bloquear a requisição.
type Sink interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	store   *Logger
	log     *logging.Logger
	metrics *metrics.BookingMetrics

	queue chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(store *Logger, log *logging.Logger, m *metrics.BookingMetrics) *Dispatcher {
	d := &Dispatcher{
		store:   store,
		log:     log,
		metrics: m,
		queue:   make(chan Event, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		if err := d.store.Log(context.Background(), ev); err != nil {
			d.log.Error("audit write failed", "action", ev.Action, "error", err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// fila cheia: descarta, nunca quebra a API
		d.metrics.ObserveQueueDrop("audit")
		d.log.Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

// Close drena a fila e espera o worker terminar.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

type NopSink struct{}

func (NopSink) Dispatch(Event) {}
