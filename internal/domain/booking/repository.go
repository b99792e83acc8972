package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/booking-crm/internal/models"
)

type AvailabilitySource interface {
	// Janelas de usuários com role closer, datas em [from, to] (YYYY-MM-DD).
	ListCloserAvailability(
		ctx context.Context,
		fromDate string,
		toDate string,
	) ([]AvailabilityWindow, error)
}

type AppointmentStore interface {
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// nil, nil quando não existe agendamento ativo no horário.
	FindActiveAppointment(
		ctx context.Context,
		closerID uint,
		startUTC time.Time,
	) (*models.Appointment, error)

	ListActiveAppointments(
		ctx context.Context,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListCloserAppointments(
		ctx context.Context,
		closerID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error
}

type LeadStore interface {
	// nil, nil quando o e-mail não existe.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error

	// nil, nil quando o usuário ainda não tem perfil.
	GetLeadProfile(ctx context.Context, userID uint) (*models.LeadProfile, error)
	CreateLeadProfile(ctx context.Context, p *models.LeadProfile) error
	SaveLeadProfile(ctx context.Context, p *models.LeadProfile) error
}

// QuestionFilter seleciona as perguntas de um evento, do seu grupo e as globais.
type QuestionFilter struct {
	Step         string
	EventID      *uint
	EventGroupID *uint
}

type SurveyStore interface {
	ListActiveQuestions(ctx context.Context, f QuestionFilter) ([]models.SurveyQuestion, error)
	ListAnswers(ctx context.Context, leadID uint, questionIDs []uint) ([]models.SurveyAnswer, error)
	FindAnswer(ctx context.Context, leadID, questionID uint) (*models.SurveyAnswer, error)
	CreateAnswers(ctx context.Context, answers []models.SurveyAnswer) error
	SaveAnswer(ctx context.Context, a *models.SurveyAnswer) error
}

type EventStore interface {
	// nil, nil quando nenhum evento usa o utm.
	FindEventByUTM(ctx context.Context, utm string) (*models.Event, error)
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
}

type Repository interface {
	AvailabilitySource
	AppointmentStore
	LeadStore
	SurveyStore
	EventStore

	// Transaction executa fn numa única transação; erro desfaz tudo.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}
