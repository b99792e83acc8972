package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	"github.com/BruksfildServices01/booking-crm/internal/config"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/funnel"
	"github.com/BruksfildServices01/booking-crm/internal/handlers"
	infraRepo "github.com/BruksfildServices01/booking-crm/internal/infra/repository"
	"github.com/BruksfildServices01/booking-crm/internal/leadstatus"
	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/metrics"
	"github.com/BruksfildServices01/booking-crm/internal/middleware"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	ucBooking "github.com/BruksfildServices01/booking-crm/internal/usecase/booking"
	ucPayment "github.com/BruksfildServices01/booking-crm/internal/usecase/payment"
)

// SessionStore guarda o estado do funil por visitante.
type SessionStore interface {
	middleware.BagSource
	Ping(ctx context.Context) error
}

// Infra são os singletons criados no main (e fechados por ele).
type Infra struct {
	Sessions SessionStore
	Log      *logging.Logger
	Metrics  *metrics.BookingMetrics
	Audit    audit.Sink
	Notifier domain.Notifier
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) {

	if infra.Log == nil {
		infra.Log = logging.Discard()
	}

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(infra.Log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	paymentRepo := infraRepo.NewPaymentGormRepository(db)
	recomputer := leadstatus.NewRecomputer(db)

	effects := ucBooking.Effects{
		Notifier:   infra.Notifier,
		Recomputer: recomputer,
		Audit:      infra.Audit,
		Metrics:    infra.Metrics,
		Log:        infra.Log,
	}

	// ======================================================
	// 🧠 USE CASES — FUNIL
	// ======================================================
	flush := ucBooking.NewFlushStaged(bookingRepo, effects)

	flow := funnel.NewFlow(
		funnel.NewController(bookingRepo, cfg.DefaultUTMSource, infra.Metrics, infra.Log),
		funnel.UseCases{
			Identify:       ucBooking.NewIdentifyLead(bookingRepo, flush),
			Contact:        ucBooking.NewUpsertContact(bookingRepo, flush, infra.Audit, cfg.DefaultUTMSource),
			ContactPrefill: ucBooking.NewGetContactPrefill(bookingRepo),
			ListSurvey:     ucBooking.NewListSurvey(bookingRepo),
			SubmitSurvey:   ucBooking.NewSubmitSurvey(bookingRepo),
			ResolveSlots:   ucBooking.NewResolveSlots(bookingRepo, cfg.DefaultTimezone, cfg.BookingWindowDays),
			ClaimSlot:      ucBooking.NewClaimSlot(bookingRepo, effects),
		},
	)

	// ======================================================
	// 🧠 USE CASES — EQUIPE
	// ======================================================
	listAppointmentsUC := ucBooking.NewListCloserAppointments(bookingRepo)
	cancelAppointmentUC := ucBooking.NewCancelAppointment(bookingRepo, effects)
	completeAppointmentUC := ucBooking.NewCompleteAppointment(bookingRepo, effects)
	paymentSvc := ucPayment.NewService(paymentRepo, recomputer, infra.Audit, infra.Log)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	funnelHandler := handlers.NewFunnelHandler(flow, infra.Log)
	authHandler := handlers.NewAuthHandler(db, cfg)
	availabilityHandler := handlers.NewAvailabilityHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(
		bookingRepo,
		listAppointmentsUC,
		cancelAppointmentUC,
		completeAppointmentUC,
	)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	meHandler := handlers.NewMeHandler(db, cfg.DefaultTimezone)
	leadHandler := handlers.NewLeadHandler(db)
	healthHandler := handlers.NewHealthHandler(db, infra.Sessions)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 FUNIL (visitante, cookie de sessão)
		// ------------------------------
		bookingAPI := api.Group("/booking")
		bookingAPI.Use(middleware.SessionMiddleware(infra.Sessions, middleware.SessionOptions{
			CookieName: cfg.SessionCookieName,
			MaxAge:     int(cfg.SessionTTL.Seconds()),
			Secure:     cfg.CookieSecure,
		}))
		{
			bookingAPI.GET("/start", funnelHandler.Start)
			bookingAPI.GET("/flow", funnelHandler.Flow)
			bookingAPI.POST("/next", funnelHandler.Next)
			bookingAPI.POST("/identify", funnelHandler.Identify)
			bookingAPI.GET("/details", funnelHandler.GetDetails)
			bookingAPI.POST("/details", funnelHandler.SubmitDetails)
			bookingAPI.GET("/survey", funnelHandler.GetSurvey)
			bookingAPI.POST("/survey", funnelHandler.SubmitSurvey)
			bookingAPI.GET("/calendar", funnelHandler.Calendar)
			bookingAPI.POST("/select", funnelHandler.SelectSlot)
			bookingAPI.GET("/thank-you", funnelHandler.ThankYou)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 EQUIPE (closer e admin)
		// ------------------------------
		secured := api.Group("/me")
		secured.Use(
			middleware.AuthMiddleware(cfg),
			middleware.RequireRole(models.RoleCloser, models.RoleAdmin),
		)
		{
			secured.GET("", meHandler.GetMe)

			secured.GET("/availability", availabilityHandler.Get)
			secured.PUT("/availability", availabilityHandler.Update)

			secured.GET("/appointments", appointmentHandler.List)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
		}

		// ------------------------------
		// 🔐 ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(
			middleware.AuthMiddleware(cfg),
			middleware.RequireRole(models.RoleAdmin),
		)
		{
			admin.POST("/closers", authHandler.CreateCloser)
			admin.GET("/leads", leadHandler.List)

			admin.POST("/enrollments", paymentHandler.CreateEnrollment)
			admin.POST("/enrollments/:id/payments", paymentHandler.AddPayment)
			admin.DELETE("/enrollments/:id", paymentHandler.DeleteEnrollment)
			admin.DELETE("/payments/:id", paymentHandler.DeletePayment)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
