package payments

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/scheduling"
)

// Store is the persistence surface of the payment flow.
type Store interface {
	Get(ctx context.Context, id string) (*models.Appointment, error)

	// SetOrder records the gateway order reference on the appointment.
	SetOrder(ctx context.Context, id, orderID string) error

	// TransitionPayment conditionally moves the payment status. paymentID is
	// recorded when non-empty. Reports whether a row changed.
	TransitionPayment(ctx context.Context, id string, from, to models.PaymentStatus, paymentID string) (bool, error)
}

// GormStore is the MySQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *GormStore) SetOrder(ctx context.Context, id, orderID string) error {
	return s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("payment_order_id", orderID).Error
}

func (s *GormStore) TransitionPayment(ctx context.Context, id string, from, to models.PaymentStatus, paymentID string) (bool, error) {
	fields := map[string]interface{}{"payment_status": to}
	if paymentID != "" {
		fields["payment_id"] = paymentID
	}
	tx := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND payment_status = ?", id, from).
		Updates(fields)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
