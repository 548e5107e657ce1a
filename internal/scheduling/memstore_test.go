package scheduling

import (
	"context"
	"fmt"
	"sync"

	"vishubh-healthcare-server/internal/models"
)

// memStore is an in-memory Store that enforces the slot-key uniqueness rule
// the same way the database index does.
type memStore struct {
	mu    sync.Mutex
	seq   int
	appts map[string]*models.Appointment
}

func newMemStore() *memStore {
	return &memStore{appts: make(map[string]*models.Appointment)}
}

func (m *memStore) slotTaken(key *string, excludeID string) bool {
	if key == nil {
		return false
	}
	for id, a := range m.appts {
		if id == excludeID {
			continue
		}
		if a.SlotKey != nil && *a.SlotKey == *key {
			return true
		}
	}
	return false
}

func (m *memStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (m *memStore) Create(ctx context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slotTaken(appt.SlotKey, "") {
		return ErrSlotTaken
	}
	m.seq++
	if appt.ID == "" {
		appt.ID = fmt.Sprintf("appt-%d", m.seq)
	}
	cp := *appt
	m.appts[appt.ID] = &cp
	return nil
}

func (m *memStore) CountActiveAtSlot(ctx context.Context, doctorID, date, timeOfDay, excludeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, a := range m.appts {
		if id == excludeID {
			continue
		}
		if a.DoctorID != nil && *a.DoctorID == doctorID && a.Date == date && a.Time == timeOfDay && a.IsActive() {
			count++
		}
	}
	return count, nil
}

func statusIn(s models.AppointmentStatus, from []models.AppointmentStatus) bool {
	for _, f := range from {
		if s == f {
			return true
		}
	}
	return false
}

func (m *memStore) Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, clearSlot bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok || !statusIn(appt.Status, from) {
		return false, nil
	}
	appt.Status = to
	if clearSlot {
		appt.SlotKey = nil
	}
	return true, nil
}

func (m *memStore) Assign(ctx context.Context, id, doctorID string, slotKey *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok || !appt.IsActive() {
		return false, nil
	}
	if m.slotTaken(slotKey, id) {
		return false, ErrSlotTaken
	}
	appt.DoctorID = &doctorID
	appt.SlotKey = slotKey
	return true, nil
}

func (m *memStore) Move(ctx context.Context, id, date, timeOfDay string, slotKey *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok || !appt.IsActive() {
		return false, nil
	}
	if m.slotTaken(slotKey, id) {
		return false, ErrSlotTaken
	}
	appt.Date = date
	appt.Time = timeOfDay
	appt.SlotKey = slotKey
	return true, nil
}

func (m *memStore) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appts {
		if a.DoctorID != nil && *a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		out = append(out, *a)
	}
	return out, nil
}
