package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/middleware"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	booking "github.com/BruksfildServices01/booking-crm/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	users    domain.LeadStore
	list     *booking.ListCloserAppointments
	cancel   *booking.CancelAppointment
	complete *booking.CompleteAppointment
}

func NewAppointmentHandler(
	users domain.LeadStore,
	list *booking.ListCloserAppointments,
	cancel *booking.CancelAppointment,
	complete *booking.CompleteAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{users: users, list: list, cancel: cancel, complete: complete}
}

// ======================================================
// LIST
// ======================================================

// List devolve a agenda do closer; from/to são dias no fuso dele.
func (h *AppointmentHandler) List(c *gin.Context) {
	closerID := c.MustGet(middleware.ContextUserID).(uint)
	ctx := c.Request.Context()

	closer, err := h.users.GetUser(ctx, closerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "user_not_found", "Usuario no encontrado.")
			return
		}
		httperr.Internal(c, "internal_error", "Error en la operación.")
		return
	}

	from, to, ok := dayRange(closer.Timezone, c.Query("from"), c.Query("to"))
	if !ok {
		httperr.BadRequest(c, "invalid_date", "Fecha inválida.")
		return
	}

	items, err := h.list.Execute(ctx, closerID, from, to)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// ======================================================
// CANCEL
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel.Execute)
}

// ======================================================
// COMPLETE
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute)
}

type transitionFunc func(ctx context.Context, actorID uint, role string, id uint) (*models.Appointment, error)

func (h *AppointmentHandler) transition(c *gin.Context, run transitionFunc) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.GetString(middleware.ContextUserRole)

	id, ok := paramID(c)
	if !ok {
		return
	}

	ap, err := run(c.Request.Context(), actorID, role, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}
