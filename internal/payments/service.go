package payments

import (
	"context"
	"fmt"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/observability/metrics"
	"vishubh-healthcare-server/internal/scheduling"
	"vishubh-healthcare-server/pkg/logging"
)

// Service runs the payment sub-state machine for appointments:
// pending -> paid/failed, failed -> pending (retry), paid -> refunded.
// Every move is a conditional write on the current payment status.
type Service struct {
	store   Store
	gateway Gateway
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService creates a payment service.
func NewService(store Store, gateway Gateway, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, gateway: gateway, logger: logger, metrics: m}
}

// Appointment fetches the appointment a payment belongs to.
func (s *Service) Appointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.store.Get(ctx, appointmentID)
}

// CreateOrder registers a gateway order for a payment-pending appointment and
// records the order reference.
func (s *Service) CreateOrder(ctx context.Context, appointmentID string) (string, error) {
	appt, err := s.store.Get(ctx, appointmentID)
	if err != nil {
		return "", err
	}
	if appt.PaymentStatus != models.PaymentPending {
		return "", fmt.Errorf("%w: payment is %s", scheduling.ErrInvalidTransition, appt.PaymentStatus)
	}

	receipt := fmt.Sprintf("APT_%s_%s", appt.ID, appt.PatientID)
	orderID, err := s.gateway.CreateOrder(ctx, appt.PaymentAmount, "INR", receipt)
	if err != nil {
		return "", err
	}

	if err := s.store.SetOrder(ctx, appointmentID, orderID); err != nil {
		return "", err
	}

	s.logger.Info("payment order created",
		"appointment_id", appointmentID, "order_id", orderID, "amount", appt.PaymentAmount)
	return orderID, nil
}

// Confirm handles the gateway's payment-confirmation callback. A valid
// signature moves pending -> paid; an invalid one moves pending -> failed and
// leaves the appointment status untouched. Already-paid confirmations with a
// valid signature are idempotent.
func (s *Service) Confirm(ctx context.Context, appointmentID, orderID, paymentID, signature string) (*models.Appointment, error) {
	appt, err := s.store.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		won, terr := s.store.TransitionPayment(ctx, appointmentID,
			models.PaymentPending, models.PaymentFailed, paymentID)
		if terr != nil {
			return nil, terr
		}
		if won {
			s.metrics.ObservePayment("failed")
			s.logger.Warn("payment signature rejected",
				"appointment_id", appointmentID, "order_id", orderID, "payment_id", paymentID)
		}
		return nil, ErrVerificationFailed
	}

	if appt.PaymentStatus == models.PaymentPaid && appt.PaymentID == paymentID {
		return appt, nil
	}

	won, err := s.store.TransitionPayment(ctx, appointmentID,
		models.PaymentPending, models.PaymentPaid, paymentID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("%w: payment is %s", scheduling.ErrInvalidTransition, appt.PaymentStatus)
	}

	s.metrics.ObservePayment("paid")
	s.logger.Info("payment confirmed",
		"appointment_id", appointmentID, "order_id", orderID, "payment_id", paymentID)
	return s.store.Get(ctx, appointmentID)
}

// Retry moves a failed payment back to pending and opens a fresh gateway
// order for another attempt.
func (s *Service) Retry(ctx context.Context, appointmentID string) (string, error) {
	won, err := s.store.TransitionPayment(ctx, appointmentID,
		models.PaymentFailed, models.PaymentPending, "")
	if err != nil {
		return "", err
	}
	if !won {
		appt, gerr := s.store.Get(ctx, appointmentID)
		if gerr != nil {
			return "", gerr
		}
		return "", fmt.Errorf("%w: payment is %s", scheduling.ErrInvalidTransition, appt.PaymentStatus)
	}
	return s.CreateOrder(ctx, appointmentID)
}

// Refund refunds a paid appointment through the gateway and records the
// refunded state. amount 0 refunds the full payment.
func (s *Service) Refund(ctx context.Context, appointmentID string, amount float64) (*models.Appointment, error) {
	appt, err := s.store.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !scheduling.CanTransitionPayment(appt.PaymentStatus, models.PaymentRefunded) {
		return nil, fmt.Errorf("%w: payment is %s", scheduling.ErrInvalidTransition, appt.PaymentStatus)
	}

	if err := s.gateway.Refund(ctx, appt.PaymentID, amount); err != nil {
		return nil, err
	}

	won, err := s.store.TransitionPayment(ctx, appointmentID,
		models.PaymentPaid, models.PaymentRefunded, "")
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("%w: payment no longer refundable", scheduling.ErrInvalidTransition)
	}

	s.metrics.ObservePayment("refunded")
	s.logger.Info("payment refunded", "appointment_id", appointmentID, "payment_id", appt.PaymentID)
	return s.store.Get(ctx, appointmentID)
}
