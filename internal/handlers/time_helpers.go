package handlers

import (
	"time"

	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

const (
	dateLayout = "2006-01-02"
	hmLayout   = "15:04"
)

func isDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func isHM(s string) bool {
	_, err := time.Parse(hmLayout, s)
	return len(s) == 5 && err == nil
}

// dayRange converte from/to (YYYY-MM-DD, fuso do closer) em [início, fim) UTC.
// Vazio vira hoje.
func dayRange(tz, fromStr, toStr string) (time.Time, time.Time, bool) {
	loc := timezone.Location(tz)
	today := timezone.NowIn(tz).Format(dateLayout)

	if fromStr == "" {
		fromStr = today
	}
	if toStr == "" {
		toStr = fromStr
	}

	from, err := time.ParseInLocation(dateLayout, fromStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.ParseInLocation(dateLayout, toStr, loc)
	if err != nil || to.Before(from) {
		return time.Time{}, time.Time{}, false
	}

	return from.UTC(), to.AddDate(0, 0, 1).UTC(), true
}
