package billing

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/scheduling"
)

// ErrDuplicateInvoice reports a lost race on the one-invoice-per-appointment
// unique index. The service resolves it by returning the winner.
var ErrDuplicateInvoice = errors.New("billing: invoice already exists for appointment")

// Store is the persistence surface of invoicing.
type Store interface {
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)

	// InvoiceForAppointment returns the invoice billed to the appointment,
	// or (nil, nil) when none exists.
	InvoiceForAppointment(ctx context.Context, appointmentID string) (*models.Invoice, error)

	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)

	// CreateInvoice inserts the invoice; ErrDuplicateInvoice when the
	// appointment is already billed.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error

	SavePDF(ctx context.Context, invoiceID string, data []byte) error
}

// ErrInvoiceNotFound reports that no invoice exists with the given id.
var ErrInvoiceNotFound = errors.New("billing: invoice not found")

// GormStore is the MySQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Preload("Patient").Preload("Doctor").
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *GormStore) InvoiceForAppointment(ctx context.Context, appointmentID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).First(&inv, "appointment_id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (s *GormStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Preload("Appointment").Preload("Appointment.Patient").Preload("Appointment.Doctor").
		First(&inv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *GormStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if err := s.db.WithContext(ctx).Create(inv).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateInvoice
		}
		return err
	}
	return nil
}

func (s *GormStore) SavePDF(ctx context.Context, invoiceID string, data []byte) error {
	return s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Update("pdf_data", data).Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
