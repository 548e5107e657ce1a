package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"vishubh-healthcare-server/internal/middleware"
	"vishubh-healthcare-server/internal/payments"
	"vishubh-healthcare-server/internal/utils"
)

// PaymentHandler exposes the payment flow: order creation, the gateway's
// confirmation callback, retry after failure, and refunds.
type PaymentHandler struct {
	Payments *payments.Service
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc *payments.Service) *PaymentHandler {
	return &PaymentHandler{Payments: svc}
}

// CreateOrder opens a gateway order for a payment-pending appointment.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Payments.Appointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !actor.CanActFor(appt.PatientID) {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}

	orderID, err := h.Payments.CreateOrder(c.Request.Context(), appt.ID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Payment order created", gin.H{
		"orderId": orderID,
		"amount":  appt.PaymentAmount,
	})
}

// ConfirmPaymentRequest represents the gateway confirmation payload.
type ConfirmPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Confirm verifies the gateway's payment signature and settles the payment.
// A bad signature marks the payment failed; the appointment itself is not
// touched.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req ConfirmPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Payments.Confirm(c.Request.Context(), c.Param("id"),
		req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Payment confirmed", appt)
}

// Retry reopens a failed payment: back to pending with a fresh order.
func (h *PaymentHandler) Retry(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Payments.Appointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !actor.CanActFor(appt.PatientID) {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}

	orderID, err := h.Payments.Retry(c.Request.Context(), appt.ID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Payment retry order created", gin.H{"orderId": orderID})
}

// RefundRequest represents an optional partial-refund amount.
type RefundRequest struct {
	Amount float64 `json:"amount"`
}

// Refund refunds a paid appointment through the gateway. Admin only.
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appt, err := h.Payments.Refund(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Payment refunded", appt)
}
