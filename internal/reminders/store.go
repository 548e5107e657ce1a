package reminders

import (
	"context"

	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/models"
)

// Store is the persistence surface of the reminder batch.
type Store interface {
	// ListDue returns active appointments on the given date whose reminder
	// has not been sent, with patient and doctor loaded. Re-queryable.
	ListDue(ctx context.Context, date string) ([]models.Appointment, error)

	// MarkReminderSent flips the reminder flag with a conditional write so
	// concurrent batch runs cannot double-mark. Reports whether this call
	// won the write.
	MarkReminderSent(ctx context.Context, id string) (bool, error)
}

var activeStatuses = []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}

// GormStore is the MySQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListDue(ctx context.Context, date string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").
		Where("date = ? AND reminder_sent = ? AND status IN ?", date, false, activeStatuses).
		Order("time asc").
		Find(&appts).Error
	return appts, err
}

func (s *GormStore) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND reminder_sent = ?", id, false).
		Update("reminder_sent", true)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
