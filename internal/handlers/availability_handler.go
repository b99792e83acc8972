package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/middleware"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

// AvailabilityHandler gerencia os horários bookáveis do closer logado.
type AvailabilityHandler struct {
	db *gorm.DB
}

func NewAvailabilityHandler(db *gorm.DB) *AvailabilityHandler {
	return &AvailabilityHandler{db: db}
}

type AvailabilityWindowRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
}

type AvailabilityUpdateRequest struct {
	From    string                      `json:"from" binding:"required"`
	To      string                      `json:"to" binding:"required"`
	Windows []AvailabilityWindowRequest `json:"windows"`
}

func (h *AvailabilityHandler) Get(c *gin.Context) {
	closerID := c.MustGet(middleware.ContextUserID).(uint)

	from := c.Query("from")
	to := c.Query("to")

	q := h.db.WithContext(c.Request.Context()).Where("closer_id = ?", closerID)
	if from != "" {
		if !isDate(from) {
			httperr.BadRequest(c, "invalid_date", "Fecha inválida.")
			return
		}
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		if !isDate(to) {
			httperr.BadRequest(c, "invalid_date", "Fecha inválida.")
			return
		}
		q = q.Where("date <= ?", to)
	}

	var windows []models.Availability
	if err := q.Order("date ASC, start_time ASC").Find(&windows).Error; err != nil {
		httperr.Internal(c, "failed_to_get_availability", "Error al obtener la disponibilidad.")
		return
	}

	c.JSON(http.StatusOK, windows)
}

// Update substitui todas as janelas do closer entre from e to (inclusive).
func (h *AvailabilityHandler) Update(c *gin.Context) {
	closerID := c.MustGet(middleware.ContextUserID).(uint)

	var req AvailabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	if !isDate(req.From) || !isDate(req.To) || req.To < req.From {
		httperr.BadRequest(c, "invalid_date", "Fecha inválida.")
		return
	}

	seen := make(map[string]bool, len(req.Windows))
	toCreate := make([]models.Availability, 0, len(req.Windows))
	for _, w := range req.Windows {
		if !isDate(w.Date) || !isHM(w.StartTime) {
			httperr.BadRequest(c, "invalid_window", "Horario inválido.")
			return
		}
		if w.Date < req.From || w.Date > req.To {
			httperr.BadRequest(c, "window_out_of_range", "Horario fuera del rango.")
			return
		}
		key := w.Date + " " + w.StartTime
		if seen[key] {
			continue
		}
		seen[key] = true

		toCreate = append(toCreate, models.Availability{
			CloserID:  closerID,
			Date:      w.Date,
			StartTime: w.StartTime,
		})
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("closer_id = ? AND date >= ? AND date <= ?", closerID, req.From, req.To).
			Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_availability", "Error al guardar la disponibilidad.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "windows": len(toCreate)})
}
