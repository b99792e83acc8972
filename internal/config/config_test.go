package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "DEFAULT_TIMEZONE", "BOOKING_WINDOW_DAYS",
		"SESSION_TTL", "COOKIE_SECURE", "DEFAULT_UTM_SOURCE", "REDIS_DB",
		"CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "America/La_Paz", cfg.DefaultTimezone)
	assert.Equal(t, 14, cfg.BookingWindowDays)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "direct", cfg.DefaultUTMSource)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DEFAULT_TIMEZONE", "America/Bogota")
	t.Setenv("BOOKING_WINDOW_DAYS", "7")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://landing.example , ,https://app.example")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "America/Bogota", cfg.DefaultTimezone)
	assert.Equal(t, 7, cfg.BookingWindowDays)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"https://landing.example", "https://app.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BOOKING_WINDOW_DAYS", "two weeks")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()

	assert.Equal(t, 14, cfg.BookingWindowDays)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
}
