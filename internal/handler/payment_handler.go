package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/service"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// PaymentHandler exposes payment lifecycle endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param period query string false "Filter by period"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by payment type"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter models.PaymentFilter
	filter.StudentID = c.Query("studentId")
	filter.Period = c.Query("period")
	if raw := c.Query("status"); raw != "" {
		if status, ok := models.ResolvePaymentStatus(raw); ok {
			filter.Status = &status
		}
	}
	if raw := c.Query("type"); raw != "" {
		if paymentType, ok := models.ResolvePaymentType(raw); ok {
			filter.Type = &paymentType
		}
	}
	filter.Page, filter.PageSize = parsePaging(c, 20)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// GetByFolio godoc
// @Summary Get payment by folio
// @Tags Payments
// @Produce json
// @Param folio path string true "Receipt folio"
// @Success 200 {object} response.Envelope
// @Router /payments/folio/{folio} [get]
func (h *PaymentHandler) GetByFolio(c *gin.Context) {
	payment, err := h.payments.GetByFolio(c.Request.Context(), c.Param("folio"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Register godoc
// @Summary Register charge
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.RegisterPaymentRequest true "Charge payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	var req service.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.RegisteredBy = claims.UserID
	}
	payment, err := h.payments.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// RecordPayment godoc
// @Summary Apply a received amount to a charge
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.RecordPaymentRequest true "Payment amount payload"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/pay [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.payments.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Transition godoc
// @Summary Transition payment status
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body transitionRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/status [patch]
func (h *PaymentHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.payments.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Summary godoc
// @Summary Student account summary
// @Tags Payments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /payments/summary/{studentId} [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	summary, err := h.payments.Summarize(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// MarkOverdue godoc
// @Summary Sweep due payments into overdue
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/mark-overdue [post]
func (h *PaymentHandler) MarkOverdue(c *gin.Context) {
	moved, err := h.payments.MarkOverdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"marked_overdue": moved}, nil)
}
