package reminders

import (
	"context"
	"fmt"
	"time"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/notify"
	"vishubh-healthcare-server/internal/observability/metrics"
	"vishubh-healthcare-server/pkg/logging"
)

// Stats summarizes one reminder batch run.
type Stats struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Service selects next-day appointments and emails both parties. The
// reminder flag is set only when every recipient was notified; a partial
// failure leaves the appointment eligible for the next run, accepting a
// duplicate send to the recipient that already got one.
type Service struct {
	store   Store
	mail    notify.EmailSender
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

// NewService creates a reminder service.
func NewService(store Store, mail notify.EmailSender, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, mail: mail, logger: logger, metrics: m}
}

// SelectDue returns the appointments dated one day after ref that still need
// a reminder.
func (s *Service) SelectDue(ctx context.Context, ref time.Time) ([]models.Appointment, error) {
	tomorrow := ref.AddDate(0, 0, 1).Format(models.DateLayout)
	return s.store.ListDue(ctx, tomorrow)
}

// Run processes one reminder batch. Individual send errors are logged and
// counted, never propagated, so one failure does not abort the batch.
func (s *Service) Run(ctx context.Context, ref time.Time) (Stats, error) {
	due, err := s.SelectDue(ctx, ref)
	if err != nil {
		return Stats{}, fmt.Errorf("reminders: select due: %w", err)
	}

	stats := Stats{Total: len(due)}
	if len(due) == 0 {
		return stats, nil
	}

	s.logger.Info("reminder batch started", "due", len(due))

	for i := range due {
		if s.remind(ctx, &due[i]) {
			stats.Sent++
			s.metrics.ObserveReminder("sent")
		} else {
			stats.Failed++
			s.metrics.ObserveReminder("failed")
		}
	}

	s.logger.Info("reminder batch finished",
		"total", stats.Total, "sent", stats.Sent, "failed", stats.Failed)
	return stats, nil
}

// remind notifies the patient and, if assigned, the doctor. Both must succeed
// before the reminder flag is set.
func (s *Service) remind(ctx context.Context, appt *models.Appointment) bool {
	patientOK := s.sendPatientReminder(ctx, appt)

	doctorOK := true
	if appt.Doctor != nil {
		doctorOK = s.sendDoctorReminder(ctx, appt)
	}

	if !patientOK || !doctorOK {
		return false
	}

	won, err := s.store.MarkReminderSent(ctx, appt.ID)
	if err != nil {
		s.logger.Error("failed to mark reminder sent", "appointment_id", appt.ID, "error", err)
		return false
	}
	if !won {
		// A concurrent run already marked it; the notification still went out.
		s.logger.Warn("reminder already marked by another run", "appointment_id", appt.ID)
	}
	return true
}

func (s *Service) sendPatientReminder(ctx context.Context, appt *models.Appointment) bool {
	doctorName := "To be assigned"
	if appt.Doctor != nil {
		doctorName = "Dr. " + appt.Doctor.FullName()
	}

	msg := notify.EmailMessage{
		To:      appt.Patient.Email,
		ToName:  appt.Patient.FullName(),
		Subject: fmt.Sprintf("Appointment Reminder - %s", appt.Date),
		Body: fmt.Sprintf(
			"Dear %s,\n\nThis is a reminder for your upcoming appointment:\n\n"+
				"Doctor: %s\nDate: %s\nTime: %s\n\n"+
				"Please arrive 10 minutes before your scheduled time.\n"+
				"If you need to reschedule or cancel, please contact us as soon as possible.\n\n"+
				"Thank you,\nVishubh Healthcare Team\n",
			appt.Patient.FullName(), doctorName, appt.Date, appt.Time),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("patient reminder failed",
			"appointment_id", appt.ID, "to", appt.Patient.Email, "error", err)
		return false
	}
	return true
}

func (s *Service) sendDoctorReminder(ctx context.Context, appt *models.Appointment) bool {
	msg := notify.EmailMessage{
		To:      appt.Doctor.Email,
		ToName:  appt.Doctor.FullName(),
		Subject: fmt.Sprintf("Appointment Reminder - %s", appt.Date),
		Body: fmt.Sprintf(
			"Dear Dr. %s,\n\nThis is a reminder for your upcoming appointment:\n\n"+
				"Patient: %s\nDate: %s\nTime: %s\nSymptoms: %s\n\n"+
				"Please review the patient details before the appointment.\n\n"+
				"Thank you,\nVishubh Healthcare Team\n",
			appt.Doctor.FullName(), appt.Patient.FullName(), appt.Date, appt.Time, appt.Symptoms),
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("doctor reminder failed",
			"appointment_id", appt.ID, "to", appt.Doctor.Email, "error", err)
		return false
	}
	return true
}
