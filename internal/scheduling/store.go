package scheduling

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/models"
)

// Store is the persistence surface the scheduling service needs. The gorm
// implementation below is authoritative; tests use an in-memory fake.
type Store interface {
	Get(ctx context.Context, id string) (*models.Appointment, error)

	// Create inserts a new appointment. A duplicate slot key reports
	// ErrSlotTaken.
	Create(ctx context.Context, appt *models.Appointment) error

	// CountActiveAtSlot counts active appointments occupying the given slot,
	// excluding excludeID when non-empty.
	CountActiveAtSlot(ctx context.Context, doctorID, date, timeOfDay, excludeID string) (int64, error)

	// Transition conditionally moves status for the row whose current status
	// is one of from, clearing the slot key on terminal moves. The slot key
	// is never set here: status changes alone must not rewrite it, or a
	// concurrent reschedule could be reverted to a stale slot. Reports
	// whether a row changed.
	Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, clearSlot bool) (bool, error)

	// Assign sets the doctor and slot key while the appointment is active.
	// A duplicate slot key reports ErrSlotTaken.
	Assign(ctx context.Context, id, doctorID string, slotKey *string) (bool, error)

	// Move changes date/time (and slot key) while the appointment is active.
	// A duplicate slot key reports ErrSlotTaken.
	Move(ctx context.Context, id, date, timeOfDay string, slotKey *string) (bool, error)

	ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
}

var activeStatuses = []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}

// GormStore is the MySQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store over the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *GormStore) Create(ctx context.Context, appt *models.Appointment) error {
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (s *GormStore) CountActiveAtSlot(ctx context.Context, doctorID, date, timeOfDay, excludeID string) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND status IN ?", doctorID, date, timeOfDay, activeStatuses)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormStore) Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, clearSlot bool) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if clearSlot {
		updates["slot_key"] = nil
	}
	tx := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *GormStore) Assign(ctx context.Context, id, doctorID string, slotKey *string) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		Updates(map[string]interface{}{"doctor_id": doctorID, "slot_key": slotKey})
	if tx.Error != nil {
		if isDuplicateKey(tx.Error) {
			return false, ErrSlotTaken
		}
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *GormStore) Move(ctx context.Context, id, date, timeOfDay string, slotKey *string) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, activeStatuses).
		Updates(map[string]interface{}{"date": date, "time": timeOfDay, "slot_key": slotKey})
	if tx.Error != nil {
		if isDuplicateKey(tx.Error) {
			return false, ErrSlotTaken
		}
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *GormStore) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("date desc, time desc").
		Find(&appts).Error
	return appts, err
}

func (s *GormStore) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		Where("doctor_id = ?", doctorID).
		Order("date desc, time desc").
		Find(&appts).Error
	return appts, err
}

func (s *GormStore) ListAll(ctx context.Context) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		Order("created_at desc").
		Find(&appts).Error
	return appts, err
}

// isDuplicateKey recognizes a unique-index violation from the MySQL driver
// (error 1062) or gorm's translated form.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
