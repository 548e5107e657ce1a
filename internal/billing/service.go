package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/observability/metrics"
	"vishubh-healthcare-server/pkg/logging"
)

// ErrPrecondition reports an invoice request for an ineligible appointment:
// not yet confirmed/completed, or no doctor assigned.
var ErrPrecondition = errors.New("billing: appointment not eligible for invoicing")

// Service issues at most one invoice per appointment. Issue is idempotent: a
// repeated request returns the existing invoice, never a duplicate.
type Service struct {
	store      Store
	renderer   Renderer
	logger     *logging.Logger
	metrics    *metrics.BookingMetrics
	defaultFee float64
}

// NewService creates a billing service. defaultFee is charged when the caller
// does not name an amount (flat consultation fee).
func NewService(store Store, renderer Renderer, defaultFee float64, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, renderer: renderer, defaultFee: defaultFee, logger: logger, metrics: m}
}

// Issue creates the invoice for an appointment, or returns the existing one.
// Preconditions: status confirmed or completed, and a doctor assigned.
func (s *Service) Issue(ctx context.Context, appointmentID string, amount float64) (*models.Invoice, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appt.Status != models.StatusConfirmed && appt.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrPrecondition, appt.Status)
	}
	if appt.DoctorID == nil || *appt.DoctorID == "" {
		return nil, fmt.Errorf("%w: no doctor assigned", ErrPrecondition)
	}

	if existing, err := s.store.InvoiceForAppointment(ctx, appointmentID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if amount <= 0 {
		amount = appt.PaymentAmount
	}
	if amount <= 0 {
		amount = s.defaultFee
	}

	inv := &models.Invoice{
		AppointmentID: appointmentID,
		Amount:        amount,
		GeneratedAt:   time.Now(),
		Paid:          appt.PaymentStatus == models.PaymentPaid,
	}
	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		if errors.Is(err, ErrDuplicateInvoice) {
			// Lost the race; the winner's invoice is the invoice.
			return s.store.InvoiceForAppointment(ctx, appointmentID)
		}
		return nil, err
	}

	s.metrics.ObserveInvoiceIssued()
	s.logger.Info("invoice issued",
		"invoice_id", inv.ID, "appointment_id", appointmentID, "amount", amount)

	// Rendering failure is logged, not fatal: the document is produced
	// lazily on download when bytes are missing.
	if data, err := s.renderer.Render(inv, appt); err != nil {
		s.logger.Error("invoice render failed", "invoice_id", inv.ID, "error", err)
	} else if err := s.store.SavePDF(ctx, inv.ID, data); err != nil {
		s.logger.Error("invoice pdf save failed", "invoice_id", inv.ID, "error", err)
	} else {
		inv.PDFData = data
	}

	return inv, nil
}

// Get fetches one invoice with its appointment loaded.
func (s *Service) Get(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	return s.store.GetInvoice(ctx, invoiceID)
}

// Download returns the invoice's PDF bytes, rendering and persisting them if
// they are missing.
func (s *Service) Download(ctx context.Context, invoiceID string) (*models.Invoice, []byte, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if len(inv.PDFData) > 0 {
		return inv, inv.PDFData, nil
	}

	appt, err := s.store.GetAppointment(ctx, inv.AppointmentID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.renderer.Render(inv, appt)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.SavePDF(ctx, inv.ID, data); err != nil {
		return nil, nil, err
	}
	return inv, data, nil
}
