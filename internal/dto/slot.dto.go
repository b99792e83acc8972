package dto

import (
	"time"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
)

// SlotDTO é o formato enviado ao cliente, que agrupa por dia no fuso local.
type SlotDTO struct {
	UTCISO   string `json:"utc_iso"`
	CloserID uint   `json:"closer_id"`
	TS       int64  `json:"ts"`
}

func SlotsFromDomain(slots []domain.CandidateSlot) []SlotDTO {
	out := make([]SlotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotDTO{
			UTCISO:   s.StartUTC.UTC().Format(time.RFC3339),
			CloserID: s.CloserID,
			TS:       s.StartUTC.Unix(),
		})
	}
	return out
}
