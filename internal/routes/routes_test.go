package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/config"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/testutil"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		SessionTTL:        time.Hour,
		SessionCookieName: "booking_sid",
		DefaultTimezone:   "America/La_Paz",
		BookingWindowDays: 14,
		DefaultUTMSource:  "direct",
	}

	gdb := testutil.NewDB(t)
	r := gin.New()
	RegisterRoutes(r, gdb, cfg, Infra{
		Sessions: session.NewRedisStore(client, cfg.SessionTTL),
	})

	return &testServer{router: r, db: gdb}
}

// visitor guarda o cookie de sessão entre requisições.
type visitor struct {
	srv    *testServer
	cookie *http.Cookie
	token  string
}

func (v *visitor) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if v.cookie != nil {
		req.AddCookie(v.cookie)
	}
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	w := httptest.NewRecorder()
	v.srv.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "booking_sid" {
			v.cookie = c
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createStaff(t *testing.T, gdb *gorm.DB, email, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		Username:     email,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Timezone:     "UTC",
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func login(t *testing.T, srv *testServer, email string) string {
	t.Helper()
	v := &visitor{srv: srv}
	w := v.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func TestBookingFunnelOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	closer := createStaff(t, srv.db, "closer@team.test", models.RoleCloser)
	day := testutil.FutureDate(3)
	require.NoError(t, srv.db.Create(&models.Availability{CloserID: closer.ID, Date: day, StartTime: "15:00"}).Error)
	q := models.SurveyQuestion{Text: "¿Objetivo?", Step: "survey", IsActive: true}
	require.NoError(t, srv.db.Create(&q).Error)

	lead := &visitor{srv: srv}

	w := lead.do(t, http.MethodGet, "/api/booking/start?utm_source=ig", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "identify", decode(t, w)["step"])
	require.NotNil(t, lead.cookie)

	// entrada fora de ordem não move o visitante
	w = lead.do(t, http.MethodPost, "/api/booking/select", map[string]any{"utc_iso": day + "T15:00:00Z", "closer_id": closer.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "step_out_of_order", body["error_code"])
	assert.Equal(t, "identify", body["step"])

	w = lead.do(t, http.MethodPost, "/api/booking/identify", map[string]string{"email": "no-es-correo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_email", decode(t, w)["error_code"])

	w = lead.do(t, http.MethodPost, "/api/booking/identify", map[string]string{"email": "Ana@Example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["known"])

	w = lead.do(t, http.MethodGet, "/api/booking/details", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", decode(t, w)["email"])

	w = lead.do(t, http.MethodPost, "/api/booking/details", map[string]string{
		"name": "Ana", "phone_code": "+591", "phone": "70000000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "survey", decode(t, w)["step"])

	w = lead.do(t, http.MethodPost, "/api/booking/survey", map[string]any{
		"answers": map[string]string{fmt.Sprint(q.ID): "Crecer"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "calendar", decode(t, w)["step"])

	w = lead.do(t, http.MethodGet, "/api/booking/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slots := decode(t, w)["slots"].([]any)
	require.Len(t, slots, 1)
	slot := slots[0].(map[string]any)
	assert.Equal(t, day+"T15:00:00Z", slot["utc_iso"])

	w = lead.do(t, http.MethodPost, "/api/booking/select", map[string]any{
		"utc_iso": slot["utc_iso"], "closer_id": closer.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, false, body["staged"])
	assert.NotNil(t, body["appointment_id"])
	assert.Equal(t, "thank_you", body["state"].(map[string]any)["step"])

	var answer models.SurveyAnswer
	require.NoError(t, srv.db.First(&answer).Error)
	assert.Equal(t, "Crecer", answer.Answer)

	// thank_you reinicia com o mesmo utm
	w = lead.do(t, http.MethodGet, "/api/booking/thank-you", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "identify", body["step"])
	assert.Equal(t, "ig", body["utm_source"])

	// outro visitante chega tarde no mesmo horário
	late := &visitor{srv: srv}
	late.do(t, http.MethodGet, "/api/booking/start", nil)
	for i := 0; i < 3; i++ {
		late.do(t, http.MethodPost, "/api/booking/next", nil)
	}

	w = late.do(t, http.MethodGet, "/api/booking/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["slots"])

	w = late.do(t, http.MethodPost, "/api/booking/select", map[string]any{
		"utc_iso": day + "T15:00:00Z", "closer_id": closer.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	body = decode(t, w)
	assert.Equal(t, "slot_taken", body["error_code"])
	assert.Equal(t, "calendar", body["step"])
}

func TestStaffAppointmentsAndCancel(t *testing.T) {
	srv := newTestServer(t)

	closer := createStaff(t, srv.db, "closer@team.test", models.RoleCloser)
	other := createStaff(t, srv.db, "other@team.test", models.RoleCloser)
	lead := testutil.CreateLead(t, srv.db, "lead@example.com")

	day := testutil.FutureDate(2)
	start, err := time.Parse("2006-01-02 15:04", day+" 10:00")
	require.NoError(t, err)

	ap := models.Appointment{CloserID: closer.ID, LeadID: &lead.ID, StartTime: start, Status: string(domain.StatusScheduled)}
	require.NoError(t, srv.db.Create(&ap).Error)

	staff := &visitor{srv: srv, token: login(t, srv, "closer@team.test")}

	w := staff.do(t, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "closer", decode(t, w)["user"].(map[string]any)["role"])

	w = staff.do(t, http.MethodGet, "/api/me/appointments?from="+day+"&to="+day, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "lead@example.com", items[0]["lead_email"])

	// outro closer não enxerga o agendamento
	intruder := &visitor{srv: srv, token: login(t, srv, other.Email)}
	w = intruder.do(t, http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/cancel", ap.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = staff.do(t, http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/cancel", ap.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(domain.StatusCanceled), decode(t, w)["status"])

	w = staff.do(t, http.MethodPatch, fmt.Sprintf("/api/me/appointments/%d/cancel", ap.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_state", decode(t, w)["error_code"])

	// closer não acessa rotas de admin
	w = staff.do(t, http.MethodGet, "/api/admin/audit-logs", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = (&visitor{srv: srv}).do(t, http.MethodGet, "/api/me/appointments", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvailabilityReplaceRange(t *testing.T) {
	srv := newTestServer(t)
	closer := createStaff(t, srv.db, "closer@team.test", models.RoleCloser)
	staff := &visitor{srv: srv, token: login(t, srv, closer.Email)}

	d1, d2 := testutil.FutureDate(1), testutil.FutureDate(2)
	outside := testutil.FutureDate(5)
	require.NoError(t, srv.db.Create(&models.Availability{CloserID: closer.ID, Date: d1, StartTime: "08:00"}).Error)
	require.NoError(t, srv.db.Create(&models.Availability{CloserID: closer.ID, Date: outside, StartTime: "08:00"}).Error)

	w := staff.do(t, http.MethodPut, "/api/me/availability", map[string]any{
		"from": d1,
		"to":   d2,
		"windows": []map[string]string{
			{"date": d1, "start_time": "09:00"},
			{"date": d2, "start_time": "10:30"},
			{"date": d2, "start_time": "10:30"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["windows"])

	var windows []models.Availability
	require.NoError(t, srv.db.Order("date, start_time").Find(&windows).Error)
	require.Len(t, windows, 3)
	assert.Equal(t, "09:00", windows[0].StartTime)
	assert.Equal(t, "10:30", windows[1].StartTime)
	assert.Equal(t, outside, windows[2].Date)

	w = staff.do(t, http.MethodPut, "/api/me/availability", map[string]any{
		"from":    d1,
		"to":      d1,
		"windows": []map[string]string{{"date": d1, "start_time": "9am"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_window", decode(t, w)["error_code"])
}

func TestAdminPaymentsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	createStaff(t, srv.db, "admin@team.test", models.RoleAdmin)
	admin := &visitor{srv: srv, token: login(t, srv, "admin@team.test")}

	lead := testutil.CreateLead(t, srv.db, "student@example.com")
	program := models.Program{Name: "Mentoría", Price: 50}
	require.NoError(t, srv.db.Create(&program).Error)

	w := admin.do(t, http.MethodPost, "/api/admin/enrollments", map[string]any{
		"student_id": lead.ID, "program_id": program.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	enrollmentID := uint(decode(t, w)["id"].(float64))

	w = admin.do(t, http.MethodPost, fmt.Sprintf("/api/admin/enrollments/%d/payments", enrollmentID), map[string]any{
		"amount": 50, "payment_type": "full",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paymentID := uint(decode(t, w)["id"].(float64))

	var profile models.LeadProfile
	require.NoError(t, srv.db.Where("user_id = ?", lead.ID).First(&profile).Error)
	assert.Equal(t, models.LeadStatusCompleted, profile.Status)

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/payments/%d", paymentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["enrollment_removed"])

	require.NoError(t, srv.db.Where("user_id = ?", lead.ID).First(&profile).Error)
	assert.Equal(t, models.LeadStatusNew, profile.Status)

	w = admin.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/payments/%d", paymentID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = admin.do(t, http.MethodGet, "/api/admin/leads?status=new&query=student", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	leads := decode(t, w)["data"].([]any)
	require.Len(t, leads, 1)
	assert.Equal(t, "student@example.com", leads[0].(map[string]any)["email"])

	w = admin.do(t, http.MethodGet, "/api/admin/audit-logs?action=payment_deleted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["page"])
	assert.NotNil(t, body["data"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w := (&visitor{srv: srv}).do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
