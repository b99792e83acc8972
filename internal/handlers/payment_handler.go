package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/middleware"
	ucPayment "github.com/BruksfildServices01/booking-crm/internal/usecase/payment"
)

type PaymentHandler struct {
	svc *ucPayment.Service
}

func NewPaymentHandler(svc *ucPayment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type CreateEnrollmentRequest struct {
	StudentID   uint    `json:"student_id" binding:"required"`
	ProgramID   uint    `json:"program_id" binding:"required"`
	TotalAgreed float64 `json:"total_agreed"`
}

type AddPaymentRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Status      string  `json:"status"`
	PaymentType string  `json:"payment_type"`
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return 0, false
	}
	return uint(id), true
}

func (h *PaymentHandler) CreateEnrollment(c *gin.Context) {
	var req CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	e, err := h.svc.CreateEnrollment(c.Request.Context(), ucPayment.CreateEnrollmentInput{
		StudentID:   req.StudentID,
		ProgramID:   req.ProgramID,
		TotalAgreed: req.TotalAgreed,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *PaymentHandler) AddPayment(c *gin.Context) {
	enrollmentID, ok := paramID(c)
	if !ok {
		return
	}

	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	p, err := h.svc.AddPayment(c.Request.Context(), ucPayment.AddPaymentInput{
		EnrollmentID: enrollmentID,
		Amount:       req.Amount,
		Status:       req.Status,
		PaymentType:  req.PaymentType,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)
	id, ok := paramID(c)
	if !ok {
		return
	}

	orphan, err := h.svc.DeletePayment(c.Request.Context(), actorID, id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "enrollment_removed": orphan})
}

func (h *PaymentHandler) DeleteEnrollment(c *gin.Context) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEnrollment(c.Request.Context(), actorID, id); err != nil {
		httperr.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
