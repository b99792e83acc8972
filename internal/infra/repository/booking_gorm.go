package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

type availabilityRow struct {
	CloserID  uint
	Date      string
	StartTime string
	Timezone  string
}

func (r *BookingGormRepository) ListCloserAvailability(
	ctx context.Context,
	fromDate string,
	toDate string,
) ([]domain.AvailabilityWindow, error) {

	var rows []availabilityRow
	if err := r.db.WithContext(ctx).
		Table("availabilities AS a").
		Select("a.closer_id, a.date, a.start_time, u.timezone").
		Joins("JOIN users u ON u.id = a.closer_id").
		Where("u.role = ? AND a.date >= ? AND a.date <= ?", models.RoleCloser, fromDate, toDate).
		Order("a.date ASC, a.start_time ASC, a.closer_id ASC, a.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.AvailabilityWindow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AvailabilityWindow{
			CloserID:  row.CloserID,
			Date:      row.Date,
			LocalTime: row.StartTime,
			Timezone:  row.Timezone,
		})
	}
	return out, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *BookingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	ap.StartTime = ap.StartTime.UTC()
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *BookingGormRepository) FindActiveAppointment(
	ctx context.Context,
	closerID uint,
	startUTC time.Time,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where("closer_id = ? AND start_time = ? AND status <> ?",
			closerID, startUTC.UTC(), string(domain.StatusCanceled)).
		First(&ap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) ListActiveAppointments(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "closer_id", "start_time", "status").
		Where("status <> ? AND start_time >= ? AND start_time < ?",
			string(domain.StatusCanceled), from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *BookingGormRepository) ListCloserAppointments(
	ctx context.Context,
	closerID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Lead").
		Where("closer_id = ? AND start_time >= ? AND start_time < ?",
			closerID, from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *BookingGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	ap.StartTime = ap.StartTime.UTC()
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Lead
// --------------------------------------------------

func (r *BookingGormRepository) FindUserByEmail(
	ctx context.Context,
	email string,
) (*models.User, error) {

	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BookingGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BookingGormRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingGormRepository) CreateUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *BookingGormRepository) SaveUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Omit("LeadProfile").Save(u).Error
}

func (r *BookingGormRepository) GetLeadProfile(
	ctx context.Context,
	userID uint,
) (*models.LeadProfile, error) {

	var p models.LeadProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) CreateLeadProfile(ctx context.Context, p *models.LeadProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *BookingGormRepository) SaveLeadProfile(ctx context.Context, p *models.LeadProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// --------------------------------------------------
// Survey
// --------------------------------------------------

func (r *BookingGormRepository) ListActiveQuestions(
	ctx context.Context,
	f domain.QuestionFilter,
) ([]models.SurveyQuestion, error) {

	q := r.db.WithContext(ctx).
		Where("is_active = ?", true)

	if f.Step != "" {
		q = q.Where("step = ?", f.Step)
	}

	scope := r.db.Where("event_id IS NULL AND event_group_id IS NULL")
	if f.EventID != nil {
		scope = scope.Or("event_id = ?", *f.EventID)
	}
	if f.EventGroupID != nil {
		scope = scope.Or("event_group_id = ?", *f.EventGroupID)
	}

	var qs []models.SurveyQuestion
	if err := q.Where(scope).
		Order("sort_order ASC, id ASC").
		Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *BookingGormRepository) ListAnswers(
	ctx context.Context,
	leadID uint,
	questionIDs []uint,
) ([]models.SurveyAnswer, error) {

	var answers []models.SurveyAnswer
	if len(questionIDs) == 0 {
		return answers, nil
	}
	if err := r.db.WithContext(ctx).
		Where("lead_id = ? AND question_id IN ?", leadID, questionIDs).
		Order("id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *BookingGormRepository) FindAnswer(
	ctx context.Context,
	leadID uint,
	questionID uint,
) (*models.SurveyAnswer, error) {

	var a models.SurveyAnswer
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND question_id = ?", leadID, questionID).
		Order("id DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *BookingGormRepository) CreateAnswers(ctx context.Context, answers []models.SurveyAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

func (r *BookingGormRepository) SaveAnswer(ctx context.Context, a *models.SurveyAnswer) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// --------------------------------------------------
// Event
// --------------------------------------------------

func (r *BookingGormRepository) FindEventByUTM(
	ctx context.Context,
	utm string,
) (*models.Event, error) {

	var ev models.Event
	err := r.db.WithContext(ctx).Where("utm_source = ?", utm).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *BookingGormRepository) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	var ev models.Event
	if err := r.db.WithContext(ctx).First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
