package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/booking-crm/internal/funnel"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/logging"
	"github.com/BruksfildServices01/booking-crm/internal/middleware"
	booking "github.com/BruksfildServices01/booking-crm/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type FunnelHandler struct {
	flow *funnel.Flow
	log  *logging.Logger
}

func NewFunnelHandler(flow *funnel.Flow, log *logging.Logger) *FunnelHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &FunnelHandler{flow: flow, log: log}
}

// --------- Requests ---------

type IdentifyRequest struct {
	Email string `json:"email"`
}

type ContactRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	PhoneCode string `json:"phone_code"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
}

type SurveyRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

type SelectSlotRequest struct {
	UTCISO   string `json:"utc_iso"`
	CloserID uint   `json:"closer_id"`
}

// fail responde o erro junto com o passo atual do visitante.
func (h *FunnelHandler) fail(c *gin.Context, err error) {
	step := ""
	if st, rerr := h.flow.Route(c.Request.Context(), middleware.Funnel(c)); rerr == nil {
		step = st.Step
	}

	if _, ok := httperr.CodeOf(err); !ok && !httperr.IsUniqueViolation(err) {
		h.log.Error("funnel request failed", "path", c.FullPath(), "error", err)
	}
	httperr.FromErrorStep(c, err, step)
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"details": err.Error(),
	})
}

// ======================================================
// NAVEGAÇÃO
// ======================================================

func (h *FunnelHandler) Start(c *gin.Context) {
	in := funnel.StartInput{UTMSource: c.Query("utm_source")}

	if raw := c.Query("closer"); raw != "" {
		// closer inválido é ignorado, o funil segue sem preferência
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			v := uint(id)
			in.PreferredCloserID = &v
		}
	}

	st, err := h.flow.Start(c.Request.Context(), middleware.Funnel(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *FunnelHandler) Flow(c *gin.Context) {
	st, err := h.flow.Route(c.Request.Context(), middleware.Funnel(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *FunnelHandler) Next(c *gin.Context) {
	st, err := h.flow.Advance(c.Request.Context(), middleware.Funnel(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ThankYou encerra o ciclo e reinicia o funil com o mesmo utm.
func (h *FunnelHandler) ThankYou(c *gin.Context) {
	st, err := h.flow.ThankYou(c.Request.Context(), middleware.Funnel(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ======================================================
// PASSOS
// ======================================================

func (h *FunnelHandler) Identify(c *gin.Context) {
	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	st, user, err := h.flow.Identify(c.Request.Context(), middleware.Funnel(c), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": st,
		"known": user != nil,
	})
}

func (h *FunnelHandler) GetDetails(c *gin.Context) {
	prefill, err := h.flow.ContactForm(c.Request.Context(), middleware.Funnel(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prefill)
}

func (h *FunnelHandler) SubmitDetails(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	st, err := h.flow.SubmitContact(c.Request.Context(), middleware.Funnel(c), booking.ContactInput{
		Name:      req.Name,
		Email:     req.Email,
		PhoneCode: req.PhoneCode,
		Phone:     req.Phone,
		Instagram: req.Instagram,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *FunnelHandler) GetSurvey(c *gin.Context) {
	view, err := h.flow.Survey(c.Request.Context(), middleware.Funnel(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FunnelHandler) SubmitSurvey(c *gin.Context) {
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	answers := make(map[uint]string, len(req.Answers))
	for k, v := range req.Answers {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		answers[uint(id)] = v
	}

	st, err := h.flow.SubmitSurvey(c.Request.Context(), middleware.Funnel(c), answers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *FunnelHandler) Calendar(c *gin.Context) {
	slots, err := h.flow.Calendar(c.Request.Context(), middleware.Funnel(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *FunnelHandler) SelectSlot(c *gin.Context) {
	var req SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	st, res, err := h.flow.SelectSlot(c.Request.Context(), middleware.Funnel(c), booking.ClaimSlotInput{
		CloserID: req.CloserID,
		UTCISO:   req.UTCISO,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{
		"state":  st,
		"staged": res.Staged,
	}
	if res.Appointment != nil {
		resp["appointment_id"] = res.Appointment.ID
	}
	c.JSON(http.StatusOK, resp)
}
