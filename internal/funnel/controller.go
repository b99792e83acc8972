package funnel

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
)

// Passos do funil.
const (
	StepIdentify       = "identify"
	StepContactDetails = "contact_details"
	StepSurvey         = "survey"
	StepCalendar       = "calendar"
	StepThankYou       = "thank_you"

	// nome antigo de contact_details ainda presente em sessões abertas
	stepContactLegacy = "contact"
)

// CanonicalSteps é a ordem aplicada a todo visitante. Event.FunnelSteps
// é só metadado e não altera essa ordem.
var CanonicalSteps = []string{StepIdentify, StepContactDetails, StepSurvey, StepCalendar}

// EventLookup resolve o evento de um utm_source.
type EventLookup interface {
	FindEventByUTM(ctx context.Context, utm string) (*models.Event, error)
}

type StartInput struct {
	UTMSource         string
	PreferredCloserID *uint
}

// State é a posição atual do visitante.
type State struct {
	Step   string `json:"step"`
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	UTM    string `json:"utm_source,omitempty"`
	UserID *uint  `json:"user_id,omitempty"`
}

type Controller struct {
	events     EventLookup
	defaultUTM string
	metrics    *metrics.BookingMetrics
	log        *logging.Logger
}

func NewController(
	events EventLookup,
	defaultUTM string,
	m *metrics.BookingMetrics,
	log *logging.Logger,
) *Controller {
	if defaultUTM == "" {
		defaultUTM = "direct"
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{events: events, defaultUTM: defaultUTM, metrics: m, log: log}
}

// ======================================================
// TRANSIÇÕES
// ======================================================

// Start reinicia o funil sem tocar no resto da sessão.
func (c *Controller) Start(ctx context.Context, f *session.Funnel, in StartInput) (*State, error) {
	utm := strings.TrimSpace(in.UTMSource)
	if utm == "" {
		utm = c.defaultUTM
	}

	ev, err := c.events.FindEventByUTM(ctx, utm)
	if err != nil {
		return nil, err
	}

	if err := f.Reset(ctx); err != nil {
		return nil, err
	}

	if err := f.SetUTM(ctx, utm); err != nil {
		return nil, err
	}
	if ev != nil {
		if err := f.SetEventID(ctx, ev.ID); err != nil {
			return nil, err
		}
	}
	if in.PreferredCloserID != nil {
		if err := f.SetPreferredCloserID(ctx, *in.PreferredCloserID); err != nil {
			return nil, err
		}
	}
	if err := f.SetSteps(ctx, CanonicalSteps); err != nil {
		return nil, err
	}
	if err := f.SetIndex(ctx, 0); err != nil {
		return nil, err
	}

	return c.Route(ctx, f)
}

func (c *Controller) Advance(ctx context.Context, f *session.Funnel) (*State, error) {
	idx, err := f.Index(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.SetIndex(ctx, idx+1); err != nil {
		return nil, err
	}
	return c.Route(ctx, f)
}

// Route devolve o passo atual. Só avança sozinho quando o nome do passo é
// desconhecido; chamadas repetidas sem Advance dão o mesmo resultado.
func (c *Controller) Route(ctx context.Context, f *session.Funnel) (*State, error) {
	return c.route(ctx, f, true)
}

func (c *Controller) route(ctx context.Context, f *session.Funnel, observe bool) (*State, error) {
	steps, err := c.steps(ctx, f)
	if err != nil {
		return nil, err
	}

	idx, err := f.Index(ctx)
	if err != nil {
		return nil, err
	}

	for idx < len(steps) {
		step := normalize(steps[idx])
		if isKnown(step) {
			return c.state(ctx, f, step, idx, len(steps), observe)
		}

		c.log.Warn("skipping unknown funnel step", "step", steps[idx], "index", idx)
		idx++
		if err := f.SetIndex(ctx, idx); err != nil {
			return nil, err
		}
	}

	return c.state(ctx, f, StepThankYou, idx, len(steps), observe)
}

// ThankYou fecha o ciclo: volta ao início com o mesmo utm.
func (c *Controller) ThankYou(ctx context.Context, f *session.Funnel) (*State, error) {
	utm, err := f.UTM(ctx)
	if err != nil {
		return nil, err
	}
	preferred, err := f.PreferredCloserID(ctx)
	if err != nil {
		return nil, err
	}
	return c.Start(ctx, f, StartInput{UTMSource: utm, PreferredCloserID: preferred})
}

// Expect rejeita entrada de um passo que não é o atual.
func (c *Controller) Expect(ctx context.Context, f *session.Funnel, step string) error {
	st, err := c.route(ctx, f, false)
	if err != nil {
		return err
	}
	if st.Step != step {
		return httperr.ErrBusinessDetail(httperr.CodeStepOutOfOrder, st.Step)
	}
	return nil
}

// ======================================================
// HELPERS
// ======================================================

func (c *Controller) steps(ctx context.Context, f *session.Funnel) ([]string, error) {
	steps, err := f.Steps(ctx)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return CanonicalSteps, nil
	}
	return steps, nil
}

func (c *Controller) state(
	ctx context.Context,
	f *session.Funnel,
	step string,
	idx, total int,
	observe bool,
) (*State, error) {
	utm, err := f.UTM(ctx)
	if err != nil {
		return nil, err
	}
	uid, err := f.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if observe {
		c.metrics.ObserveStep(step)
	}
	return &State{Step: step, Index: idx, Total: total, UTM: utm, UserID: uid}, nil
}

func normalize(step string) string {
	if step == stepContactLegacy {
		return StepContactDetails
	}
	return step
}

func isKnown(step string) bool {
	switch step {
	case StepIdentify, StepContactDetails, StepSurvey, StepCalendar:
		return true
	}
	return false
}
