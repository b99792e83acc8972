package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

type ResolveSlots struct {
	repo       domain.Repository
	defaultLoc *time.Location
	windowDays int
	now        func() time.Time
}

func NewResolveSlots(
	repo domain.Repository,
	defaultTimezone string,
	windowDays int,
) *ResolveSlots {
	if windowDays <= 0 {
		windowDays = 14
	}
	return &ResolveSlots{
		repo:       repo,
		defaultLoc: timezone.Location(defaultTimezone),
		windowDays: windowDays,
		now:        timezone.NowUTC,
	}
}

// WithClock troca o relógio (testes).
func (uc *ResolveSlots) WithClock(now func() time.Time) *ResolveSlots {
	uc.now = now
	return uc
}

func (uc *ResolveSlots) Execute(
	ctx context.Context,
	preferredCloserID *uint,
) ([]domain.CandidateSlot, error) {

	now := uc.now().UTC()

	// --------------------------------------------------
	// Janela em datas de calendário
	// --------------------------------------------------
	// datas são locais do closer: para fusos atrás de UTC o dia de ontem
	// ainda pode ter horários futuros; o filtro de passado fica no resolver
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	fromDay := today.AddDate(0, 0, -1)
	toDay := today.AddDate(0, 0, uc.windowDays)

	windows, err := uc.repo.ListCloserAvailability(
		ctx,
		fromDay.Format("2006-01-02"),
		toDay.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Agendamentos: um dia extra de cada lado cobre o deslocamento de fuso
	// --------------------------------------------------
	apps, err := uc.repo.ListActiveAppointments(
		ctx,
		fromDay.AddDate(0, 0, -1),
		toDay.AddDate(0, 0, 2),
	)
	if err != nil {
		return nil, err
	}

	booked := make([]domain.BookedSlot, 0, len(apps))
	for _, ap := range apps {
		booked = append(booked, domain.BookedSlot{CloserID: ap.CloserID, StartUTC: ap.StartTime})
	}

	return domain.ResolveSlots(domain.ResolveInput{
		Windows:           windows,
		Booked:            booked,
		NowUTC:            now,
		PreferredCloserID: preferredCloserID,
		DefaultLocation:   uc.defaultLoc,
	}), nil
}
