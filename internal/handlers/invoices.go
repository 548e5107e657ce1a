package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"vishubh-healthcare-server/internal/billing"
	"vishubh-healthcare-server/internal/middleware"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/utils"
)

// InvoiceHandler exposes invoice issuance and retrieval. Issuance is
// idempotent: repeating the request returns the existing invoice.
type InvoiceHandler struct {
	Billing *billing.Service
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(svc *billing.Service) *InvoiceHandler {
	return &InvoiceHandler{Billing: svc}
}

// IssueInvoiceRequest represents an optional override of the billed amount.
type IssueInvoiceRequest struct {
	Amount float64 `json:"amount"`
}

// Issue generates the invoice for a confirmed or completed appointment.
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	inv, err := h.Billing.Issue(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Invoice issued", inv)
}

// Get fetches a single invoice.
func (h *InvoiceHandler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	inv, err := h.Billing.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !h.canView(actor, inv) {
		utils.Forbidden(c, "You do not have access to this invoice")
		return
	}
	utils.Success(c, "Invoice fetched successfully", inv)
}

// Download streams the invoice PDF, rendering it on demand when missing.
func (h *InvoiceHandler) Download(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	inv, data, err := h.Billing.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !h.canView(actor, inv) {
		utils.Forbidden(c, "You do not have access to this invoice")
		return
	}

	filename := fmt.Sprintf("invoice_%s.pdf", inv.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "application/pdf", data)
}

func (h *InvoiceHandler) canView(actor middleware.Actor, inv *models.Invoice) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsPatient():
		return inv.Appointment.PatientID == actor.ID
	case actor.IsDoctor():
		return inv.Appointment.DoctorID != nil && *inv.Appointment.DoctorID == actor.ID
	}
	return false
}
