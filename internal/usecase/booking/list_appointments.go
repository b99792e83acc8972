package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/dto"
	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

type ListCloserAppointments struct {
	repo domain.Repository
}

func NewListCloserAppointments(repo domain.Repository) *ListCloserAppointments {
	return &ListCloserAppointments{repo: repo}
}

// Execute lista a agenda do closer; LocalTime usa o fuso dele.
func (uc *ListCloserAppointments) Execute(
	ctx context.Context,
	closerID uint,
	from time.Time,
	to time.Time,
) ([]dto.AppointmentListDTO, error) {

	closer, err := uc.repo.GetUser(ctx, closerID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(closer.Timezone)

	apps, err := uc.repo.ListCloserAppointments(ctx, closerID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		item := dto.AppointmentListDTO{
			ID:        ap.ID,
			StartTime: ap.StartTime.UTC(),
			LocalTime: ap.StartTime.In(loc).Format("2006-01-02 15:04"),
			Status:    ap.Status,
			EventID:   ap.EventID,
		}
		if ap.Lead != nil {
			item.LeadName = ap.Lead.Name
			if item.LeadName == "" {
				item.LeadName = ap.Lead.Username
			}
			item.LeadEmail = ap.Lead.Email
		}
		out = append(out, item)
	}

	return out, nil
}
