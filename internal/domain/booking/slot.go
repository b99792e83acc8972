package booking

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

// AvailabilityWindow é um início bookável no horário local do closer.
type AvailabilityWindow struct {
	CloserID  uint
	Date      string // YYYY-MM-DD
	LocalTime string // HH:MM
	Timezone  string // IANA do closer; vazio ou inválido usa o fuso padrão
}

// BookedSlot identifica um agendamento ativo.
type BookedSlot struct {
	CloserID uint
	StartUTC time.Time
}

type CandidateSlot struct {
	StartUTC time.Time
	CloserID uint
}

type ResolveInput struct {
	Windows []AvailabilityWindow
	Booked  []BookedSlot
	NowUTC  time.Time

	PreferredCloserID *uint
	DefaultLocation   *time.Location
}

type slotKey struct {
	closerID uint
	unix     int64
}

// ResolveSlots calcula os horários livres a partir das janelas locais.
//
// Um instante UTC aparece uma única vez; entre closers diferentes vence o
// primeiro carregado, a não ser que o closer preferido também esteja livre
// naquele instante.
func ResolveSlots(in ResolveInput) []CandidateSlot {
	if len(in.Windows) == 0 {
		return []CandidateSlot{}
	}

	booked := make(map[slotKey]struct{}, len(in.Booked))
	for _, b := range in.Booked {
		booked[slotKey{b.CloserID, b.StartUTC.Unix()}] = struct{}{}
	}

	locs := map[string]*time.Location{}
	location := func(tz string) *time.Location {
		if loc, ok := locs[tz]; ok {
			return loc
		}
		loc := timezone.LocationOr(tz, in.DefaultLocation)
		locs[tz] = loc
		return loc
	}

	byInstant := make(map[int64]int)
	out := make([]CandidateSlot, 0, len(in.Windows))

	for _, w := range in.Windows {
		start, err := timezone.LocalToUTC(w.Date, w.LocalTime, location(w.Timezone))
		if err != nil {
			continue
		}

		if !start.After(in.NowUTC) {
			continue
		}

		if _, taken := booked[slotKey{w.CloserID, start.Unix()}]; taken {
			continue
		}

		if i, seen := byInstant[start.Unix()]; seen {
			if in.PreferredCloserID != nil && w.CloserID == *in.PreferredCloserID {
				out[i].CloserID = w.CloserID
			}
			continue
		}

		byInstant[start.Unix()] = len(out)
		out = append(out, CandidateSlot{StartUTC: start, CloserID: w.CloserID})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartUTC.Before(out[j].StartUTC)
	})

	return out
}
