package timezone

import (
	"time"
	_ "time/tzdata"
)

// DefaultTimezone é usado quando o closer não tem fuso ou o fuso é inválido.
const DefaultTimezone = "America/La_Paz"

// fixedDefault cobre ambientes sem tzdata; La Paz é UTC-4 sem horário de verão.
var fixedDefault = time.FixedZone("BOT", -4*60*60)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location nunca falha: fuso vazio ou inválido cai no fuso padrão.
func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return defaultLocation()
}

// LocationOr é como Location, mas com fallback explícito.
func LocationOr(tz string, fallback *time.Location) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if fallback != nil {
		return fallback
	}
	return defaultLocation()
}

func defaultLocation() *time.Location {
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return fixedDefault
}

// LocalToUTC combina data (YYYY-MM-DD) e hora local (HH:MM) no fuso informado.
func LocalToUTC(date, hm string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hm, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}
