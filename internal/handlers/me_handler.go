package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/middleware"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/timezone"
)

type MeHandler struct {
	db              *gorm.DB
	defaultTimezone string
}

func NewMeHandler(db *gorm.DB, defaultTimezone string) *MeHandler {
	return &MeHandler{db: db, defaultTimezone: defaultTimezone}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID, ok := c.MustGet(middleware.ContextUserID).(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_user_id_type"})
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		return
	}

	// fuso efetivo usado para a disponibilidade
	tz := user.Timezone
	if !timezone.IsValid(tz) {
		tz = h.defaultTimezone
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
			"timezone": tz,
		},
	})
}
