package booking

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
)

// ======================================================
// LISTAGEM
// ======================================================

type SurveyView struct {
	Questions []models.SurveyQuestion `json:"questions"`
	Answers   map[uint]string         `json:"answers"`
}

type ListSurvey struct {
	repo domain.Repository
}

func NewListSurvey(repo domain.Repository) *ListSurvey {
	return &ListSurvey{repo: repo}
}

func (uc *ListSurvey) Execute(ctx context.Context, f *session.Funnel) (*SurveyView, error) {
	questions, err := activeQuestions(ctx, uc.repo, f)
	if err != nil {
		return nil, err
	}

	view := &SurveyView{Questions: questions, Answers: map[uint]string{}}

	userID, err := f.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		answers, err := uc.repo.ListAnswers(ctx, *userID, questionIDs(questions))
		if err != nil {
			return nil, err
		}
		for _, a := range answers {
			view.Answers[a.QuestionID] = a.Answer
		}
		return view, nil
	}

	staged, err := f.StagedAnswers(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range staged {
		view.Answers[a.QuestionID] = a.Answer
	}
	return view, nil
}

// activeQuestions filtra pelo evento da sessão, pelo grupo dele e pelas globais.
func activeQuestions(
	ctx context.Context,
	repo domain.Repository,
	f *session.Funnel,
) ([]models.SurveyQuestion, error) {

	filter := domain.QuestionFilter{Step: SurveyStep}

	eventID, err := f.EventID(ctx)
	if err != nil {
		return nil, err
	}
	if eventID != nil {
		ev, err := repo.GetEvent(ctx, *eventID)
		if err != nil {
			return nil, err
		}
		filter.EventID = &ev.ID
		filter.EventGroupID = ev.GroupID
	}

	return repo.ListActiveQuestions(ctx, filter)
}

func questionIDs(qs []models.SurveyQuestion) []uint {
	ids := make([]uint, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

// ======================================================
// ENVIO
// ======================================================

type SubmitSurvey struct {
	repo domain.Repository
}

func NewSubmitSurvey(repo domain.Repository) *SubmitSurvey {
	return &SubmitSurvey{repo: repo}
}

// Execute grava as respostas não vazias das perguntas ativas. Lead
// identificado grava direto; anônimo acumula na sessão.
func (uc *SubmitSurvey) Execute(
	ctx context.Context,
	f *session.Funnel,
	answers map[uint]string,
) (int, error) {

	questions, err := activeQuestions(ctx, uc.repo, f)
	if err != nil {
		return 0, err
	}

	var items []session.StagedAnswer
	for _, q := range questions {
		text := strings.TrimSpace(answers[q.ID])
		if text == "" {
			continue
		}
		items = append(items, session.StagedAnswer{QuestionID: q.ID, Answer: text})
	}
	if len(items) == 0 {
		return 0, nil
	}

	userID, err := f.UserID(ctx)
	if err != nil {
		return 0, err
	}

	if userID == nil {
		return len(items), f.StageAnswers(ctx, items...)
	}

	apptID, err := f.CurrentAppointmentID(ctx)
	if err != nil {
		return 0, err
	}

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		for _, it := range items {
			existing, err := tx.FindAnswer(ctx, *userID, it.QuestionID)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Answer = it.Answer
				if err := tx.SaveAnswer(ctx, existing); err != nil {
					return err
				}
				continue
			}
			if err := tx.CreateAnswers(ctx, []models.SurveyAnswer{{
				LeadID:        *userID,
				QuestionID:    it.QuestionID,
				Answer:        it.Answer,
				AppointmentID: apptID,
			}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(items), nil
}
