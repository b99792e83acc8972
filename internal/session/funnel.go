package session

import (
	"context"
	"time"
)

// Chaves do funil dentro da sessão.
const (
	KeySteps             = "funnel_steps"
	KeyIndex             = "funnel_index"
	KeyUserID            = "booking_user_id"
	KeyEmailInput        = "booking_email_input"
	KeyData              = "booking_data"
	KeyEventID           = "booking_event_id"
	KeyUTM               = "booking_utm"
	KeyCurrentAppt       = "current_appt_id"
	KeyPreferredCloserID = "preferred_closer_id"
)

var funnelKeys = []string{
	KeySteps, KeyIndex, KeyUserID, KeyEmailInput, KeyData,
	KeyEventID, KeyUTM, KeyCurrentAppt, KeyPreferredCloserID,
}

// StagedSlot é o horário escolhido antes da identificação.
type StagedSlot struct {
	UTCISO   string `json:"utc_iso"`
	CloserID uint   `json:"closer_id"`
}

func (s StagedSlot) StartUTC() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s.UTCISO)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

type StagedAnswer struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
}

type stagedData struct {
	Slot    *StagedSlot    `json:"slot,omitempty"`
	Answers []StagedAnswer `json:"answers,omitempty"`
}

// Funnel dá acesso tipado ao estado do funil guardado na sessão.
type Funnel struct {
	bag Bag
}

func NewFunnel(bag Bag) *Funnel {
	return &Funnel{bag: bag}
}

func (f *Funnel) Bag() Bag { return f.bag }

// Reset apaga só as chaves do funil.
func (f *Funnel) Reset(ctx context.Context) error {
	return f.bag.Pop(ctx, funnelKeys...)
}

// ===============================
// Posição no funil
// ===============================

func (f *Funnel) Steps(ctx context.Context) ([]string, error) {
	var steps []string
	_, err := f.bag.Get(ctx, KeySteps, &steps)
	return steps, err
}

func (f *Funnel) SetSteps(ctx context.Context, steps []string) error {
	return f.bag.Set(ctx, KeySteps, steps)
}

func (f *Funnel) Index(ctx context.Context) (int, error) {
	var idx int
	_, err := f.bag.Get(ctx, KeyIndex, &idx)
	return idx, err
}

func (f *Funnel) SetIndex(ctx context.Context, idx int) error {
	return f.bag.Set(ctx, KeyIndex, idx)
}

// ===============================
// Identidade
// ===============================

func (f *Funnel) UserID(ctx context.Context) (*uint, error) {
	return f.getUint(ctx, KeyUserID)
}

func (f *Funnel) SetUserID(ctx context.Context, id uint) error {
	return f.bag.Set(ctx, KeyUserID, id)
}

func (f *Funnel) ClearUserID(ctx context.Context) error {
	return f.bag.Pop(ctx, KeyUserID)
}

func (f *Funnel) EmailInput(ctx context.Context) (string, error) {
	var email string
	_, err := f.bag.Get(ctx, KeyEmailInput, &email)
	return email, err
}

func (f *Funnel) SetEmailInput(ctx context.Context, email string) error {
	return f.bag.Set(ctx, KeyEmailInput, email)
}

// ===============================
// Dados pendentes
// ===============================

func (f *Funnel) data(ctx context.Context) (stagedData, error) {
	var d stagedData
	_, err := f.bag.Get(ctx, KeyData, &d)
	return d, err
}

func (f *Funnel) saveData(ctx context.Context, d stagedData) error {
	if d.Slot == nil && len(d.Answers) == 0 {
		return f.bag.Pop(ctx, KeyData)
	}
	return f.bag.Set(ctx, KeyData, d)
}

func (f *Funnel) StagedSlot(ctx context.Context) (*StagedSlot, error) {
	d, err := f.data(ctx)
	if err != nil {
		return nil, err
	}
	return d.Slot, nil
}

func (f *Funnel) StageSlot(ctx context.Context, closerID uint, startUTC time.Time) error {
	d, err := f.data(ctx)
	if err != nil {
		return err
	}
	d.Slot = &StagedSlot{
		UTCISO:   startUTC.UTC().Format(time.RFC3339),
		CloserID: closerID,
	}
	return f.saveData(ctx, d)
}

func (f *Funnel) ClearStagedSlot(ctx context.Context) error {
	d, err := f.data(ctx)
	if err != nil {
		return err
	}
	d.Slot = nil
	return f.saveData(ctx, d)
}

func (f *Funnel) StagedAnswers(ctx context.Context) ([]StagedAnswer, error) {
	d, err := f.data(ctx)
	if err != nil {
		return nil, err
	}
	return d.Answers, nil
}

func (f *Funnel) StageAnswers(ctx context.Context, answers ...StagedAnswer) error {
	d, err := f.data(ctx)
	if err != nil {
		return err
	}
	// uma resposta por pergunta: a mais recente vence
	for _, a := range answers {
		replaced := false
		for i := range d.Answers {
			if d.Answers[i].QuestionID == a.QuestionID {
				d.Answers[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			d.Answers = append(d.Answers, a)
		}
	}
	return f.saveData(ctx, d)
}

func (f *Funnel) ClearStagedAnswers(ctx context.Context) error {
	d, err := f.data(ctx)
	if err != nil {
		return err
	}
	d.Answers = nil
	return f.saveData(ctx, d)
}

// ===============================
// Contexto do evento
// ===============================

func (f *Funnel) EventID(ctx context.Context) (*uint, error) {
	return f.getUint(ctx, KeyEventID)
}

func (f *Funnel) SetEventID(ctx context.Context, id uint) error {
	return f.bag.Set(ctx, KeyEventID, id)
}

func (f *Funnel) UTM(ctx context.Context) (string, error) {
	var utm string
	_, err := f.bag.Get(ctx, KeyUTM, &utm)
	return utm, err
}

func (f *Funnel) SetUTM(ctx context.Context, utm string) error {
	return f.bag.Set(ctx, KeyUTM, utm)
}

func (f *Funnel) CurrentAppointmentID(ctx context.Context) (*uint, error) {
	return f.getUint(ctx, KeyCurrentAppt)
}

func (f *Funnel) SetCurrentAppointmentID(ctx context.Context, id uint) error {
	return f.bag.Set(ctx, KeyCurrentAppt, id)
}

func (f *Funnel) PreferredCloserID(ctx context.Context) (*uint, error) {
	return f.getUint(ctx, KeyPreferredCloserID)
}

func (f *Funnel) SetPreferredCloserID(ctx context.Context, id uint) error {
	return f.bag.Set(ctx, KeyPreferredCloserID, id)
}

func (f *Funnel) getUint(ctx context.Context, key string) (*uint, error) {
	var v uint
	ok, err := f.bag.Get(ctx, key, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}
