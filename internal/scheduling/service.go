package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/observability/metrics"
	"vishubh-healthcare-server/pkg/logging"
)

// Service runs the appointment lifecycle: booking, doctor assignment, status
// transitions and rescheduling. All writes are conditional on the current
// status, so a lost race surfaces as ErrInvalidTransition or ErrSlotTaken
// instead of silently clobbering state.
type Service struct {
	store   Store
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService creates a scheduling service.
func NewService(store Store, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, logger: logger, metrics: m}
}

// BookParams describes a booking request.
type BookParams struct {
	PatientID string
	DoctorID  *string // optional, may be assigned later by an admin
	Date      string  // YYYY-MM-DD
	Time      string  // HH:MM
	Symptoms  string
	Amount    float64
}

// ValidateSlot checks the wire formats of an appointment date and time.
func ValidateSlot(date, timeOfDay string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidSlot, date)
	}
	if _, err := time.Parse(models.TimeLayout, timeOfDay); err != nil {
		return fmt.Errorf("%w: time %q", ErrInvalidSlot, timeOfDay)
	}
	return nil
}

// IsSlotFree reports whether no active appointment occupies the slot,
// excluding excludeID to allow idempotent re-saves. Pure predicate; the
// unique index remains the authoritative guard at commit time.
func (s *Service) IsSlotFree(ctx context.Context, doctorID, date, timeOfDay, excludeID string) (bool, error) {
	if err := ValidateSlot(date, timeOfDay); err != nil {
		return false, err
	}
	count, err := s.store.CountActiveAtSlot(ctx, doctorID, date, timeOfDay, excludeID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Book creates a pending appointment. When a doctor is requested up front the
// slot is pre-checked for fast feedback and the constrained insert is the
// correctness backstop.
func (s *Service) Book(ctx context.Context, p BookParams) (*models.Appointment, error) {
	if err := ValidateSlot(p.Date, p.Time); err != nil {
		return nil, err
	}

	if p.DoctorID != nil && *p.DoctorID != "" {
		free, err := s.IsSlotFree(ctx, *p.DoctorID, p.Date, p.Time, "")
		if err != nil {
			return nil, err
		}
		if !free {
			s.metrics.ObserveSlotConflict()
			return nil, ErrSlotTaken
		}
	}

	appt := &models.Appointment{
		PatientID:     p.PatientID,
		DoctorID:      p.DoctorID,
		Date:          p.Date,
		Time:          p.Time,
		Symptoms:      p.Symptoms,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		PaymentAmount: p.Amount,
	}
	appt.SlotKey = appt.ComputeSlotKey()

	if err := s.store.Create(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotConflict()
		}
		s.metrics.ObserveBooking("rejected")
		return nil, err
	}

	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "patient_id", p.PatientID, "date", p.Date, "time", p.Time)
	return appt, nil
}

// AssignDoctor attaches a doctor to an active appointment, claiming the slot.
func (s *Service) AssignDoctor(ctx context.Context, id, doctorID string) (*models.Appointment, error) {
	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.IsTerminal() {
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidTransition, appt.Status)
	}

	free, err := s.IsSlotFree(ctx, doctorID, appt.Date, appt.Time, id)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.ObserveSlotConflict()
		return nil, ErrSlotTaken
	}

	key := doctorID + "|" + appt.Date + "|" + appt.Time
	ok, err := s.store.Assign(ctx, id, doctorID, &key)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotConflict()
		}
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: appointment no longer active", ErrInvalidTransition)
	}

	s.logger.Info("doctor assigned", "appointment_id", id, "doctor_id", doctorID)
	return s.store.Get(ctx, id)
}

// Confirm moves a pending appointment to confirmed. A doctor must already be
// assigned; assignment and confirmation may also happen in one admin action
// via AssignDoctor followed by Confirm.
func (s *Service) Confirm(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, models.StatusConfirmed) {
		return nil, fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, appt.Status)
	}
	if appt.DoctorID == nil || *appt.DoctorID == "" {
		return nil, fmt.Errorf("%w: no doctor assigned", ErrInvalidTransition)
	}

	// Confirmation changes neither doctor nor date/time, so the slot key is
	// left alone; rewriting it here could revert a concurrent reschedule.
	ok, err := s.store.Transition(ctx, id,
		[]models.AppointmentStatus{models.StatusPending}, models.StatusConfirmed, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, appt.Status)
	}

	s.logger.Info("appointment confirmed", "appointment_id", id)
	return s.store.Get(ctx, id)
}

// Complete marks a confirmed appointment as completed and releases its slot.
func (s *Service) Complete(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, models.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> completed", ErrInvalidTransition, appt.Status)
	}

	ok, err := s.store.Transition(ctx, id,
		[]models.AppointmentStatus{models.StatusConfirmed}, models.StatusCompleted, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> completed", ErrInvalidTransition, appt.Status)
	}

	s.logger.Info("appointment completed", "appointment_id", id)
	return s.store.Get(ctx, id)
}

// Cancel moves any active appointment to cancelled, freeing the slot for
// competing bookings.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, models.StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, appt.Status)
	}

	ok, err := s.store.Transition(ctx, id, activeStatuses, models.StatusCancelled, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, appt.Status)
	}

	s.logger.Info("appointment cancelled", "appointment_id", id)
	return s.store.Get(ctx, id)
}

// UpdateStatus dispatches a requested status change through the state machine.
func (s *Service) UpdateStatus(ctx context.Context, id string, to models.AppointmentStatus) (*models.Appointment, error) {
	switch to {
	case models.StatusConfirmed:
		return s.Confirm(ctx, id)
	case models.StatusCompleted:
		return s.Complete(ctx, id)
	case models.StatusCancelled:
		return s.Cancel(ctx, id)
	default:
		return nil, fmt.Errorf("%w: target %q", ErrInvalidTransition, to)
	}
}

// Reschedule moves an active appointment to a new date/time, re-running the
// conflict check against the assigned doctor's calendar.
func (s *Service) Reschedule(ctx context.Context, id, date, timeOfDay string) (*models.Appointment, error) {
	if err := ValidateSlot(date, timeOfDay); err != nil {
		return nil, err
	}

	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.IsActive() {
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidTransition, appt.Status)
	}

	var key *string
	if appt.DoctorID != nil && *appt.DoctorID != "" {
		free, err := s.IsSlotFree(ctx, *appt.DoctorID, date, timeOfDay, id)
		if err != nil {
			return nil, err
		}
		if !free {
			s.metrics.ObserveSlotConflict()
			return nil, ErrSlotTaken
		}
		k := *appt.DoctorID + "|" + date + "|" + timeOfDay
		key = &k
	}

	ok, err := s.store.Move(ctx, id, date, timeOfDay, key)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveSlotConflict()
		}
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: appointment no longer active", ErrInvalidTransition)
	}

	s.logger.Info("appointment rescheduled", "appointment_id", id, "date", date, "time", timeOfDay)
	return s.store.Get(ctx, id)
}

// Get fetches one appointment.
func (s *Service) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.store.Get(ctx, id)
}

// ListForPatient returns the patient's appointments, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.store.ListForPatient(ctx, patientID)
}

// ListForDoctor returns the doctor's appointments, newest first.
func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.store.ListForDoctor(ctx, doctorID)
}

// ListAll returns every appointment, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.store.ListAll(ctx)
}
