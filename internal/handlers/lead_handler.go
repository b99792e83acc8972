package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/httpresp"
	"github.com/BruksfildServices01/booking-crm/internal/models"
)

type LeadHandler struct {
	db *gorm.DB
}

func NewLeadHandler(db *gorm.DB) *LeadHandler {
	return &LeadHandler{db: db}
}

type LeadListItem struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	UTMSource string `json:"utm_source"`
	Status    string `json:"status"`
}

// ======================================================
// LIST LEADS (ADMIN)
// ======================================================
func (h *LeadHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	status := strings.TrimSpace(c.Query("status"))

	q := h.db.WithContext(c.Request.Context()).
		Table("users u").
		Select("u.id, u.name, u.username, u.email, p.phone, p.instagram, p.utm_source, p.status").
		Joins("JOIN lead_profiles p ON p.user_id = u.id").
		Where("u.role = ?", models.RoleLead)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ? OR p.phone LIKE ?",
			like, like, like,
		)
	}

	if status != "" {
		q = q.Where("p.status = ?", status)
	}

	var leads []LeadListItem
	if err := q.
		Order("u.created_at DESC, u.id DESC").
		Scan(&leads).Error; err != nil {

		httperr.Internal(c, "failed_to_list_leads", "Error al listar leads.")
		return
	}

	httpresp.List(c, leads)
}
