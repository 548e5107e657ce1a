package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/scheduling"
)

type fakeStore struct {
	appointments map[string]*models.Appointment
	invoices     map[string]*models.Invoice // keyed by invoice id
	byAppt       map[string]string          // appointment id -> invoice id
	nextID       int
	createErr    error
	onCreate     func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appointments: map[string]*models.Appointment{},
		invoices:     map[string]*models.Invoice{},
		byAppt:       map[string]string{},
	}
}

func (s *fakeStore) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	appt, ok := s.appointments[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	return appt, nil
}

func (s *fakeStore) InvoiceForAppointment(_ context.Context, appointmentID string) (*models.Invoice, error) {
	id, ok := s.byAppt[appointmentID]
	if !ok {
		return nil, nil
	}
	return s.invoices[id], nil
}

func (s *fakeStore) GetInvoice(_ context.Context, id string) (*models.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *fakeStore) CreateInvoice(_ context.Context, inv *models.Invoice) error {
	if s.onCreate != nil {
		s.onCreate()
	}
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.byAppt[inv.AppointmentID]; ok {
		return ErrDuplicateInvoice
	}
	s.nextID++
	inv.ID = string(rune('a' + s.nextID))
	s.invoices[inv.ID] = inv
	s.byAppt[inv.AppointmentID] = inv.ID
	return nil
}

func (s *fakeStore) SavePDF(_ context.Context, invoiceID string, data []byte) error {
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return ErrInvoiceNotFound
	}
	inv.PDFData = data
	return nil
}

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) Render(_ *models.Invoice, _ *models.Appointment) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake"), nil
}

func docPtr(id string) *string { return &id }

func eligibleAppointment(id string) *models.Appointment {
	return &models.Appointment{
		BaseModel:     models.BaseModel{ID: id},
		PatientID:     "pat-1",
		DoctorID:      docPtr("doc-1"),
		Date:          "2026-09-10",
		Time:          "10:00",
		Status:        models.StatusConfirmed,
		PaymentStatus: models.PaymentPaid,
		PaymentAmount: 750,
	}
}

func TestIssueCreatesInvoiceOnce(t *testing.T) {
	store := newFakeStore()
	store.appointments["apt-1"] = eligibleAppointment("apt-1")
	rend := &fakeRenderer{}
	svc := NewService(store, rend, 500, nil, nil)

	first, err := svc.Issue(context.Background(), "apt-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "apt-1", first.AppointmentID)
	assert.Equal(t, 750.0, first.Amount)
	assert.True(t, first.Paid)
	assert.NotEmpty(t, first.PDFData)

	second, err := svc.Issue(context.Background(), "apt-1", 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, rend.calls)
	assert.Len(t, store.invoices, 1)
}

func TestIssueRejectsIneligibleStatus(t *testing.T) {
	store := newFakeStore()
	appt := eligibleAppointment("apt-1")
	appt.Status = models.StatusPending
	store.appointments["apt-1"] = appt
	svc := NewService(store, &fakeRenderer{}, 500, nil, nil)

	_, err := svc.Issue(context.Background(), "apt-1", 0)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Empty(t, store.invoices)
}

func TestIssueRejectsUnassignedDoctor(t *testing.T) {
	store := newFakeStore()
	appt := eligibleAppointment("apt-1")
	appt.DoctorID = nil
	store.appointments["apt-1"] = appt
	svc := NewService(store, &fakeRenderer{}, 500, nil, nil)

	_, err := svc.Issue(context.Background(), "apt-1", 0)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestIssueDefaultsToConsultationFee(t *testing.T) {
	store := newFakeStore()
	appt := eligibleAppointment("apt-1")
	appt.PaymentAmount = 0
	appt.PaymentStatus = models.PaymentPending
	store.appointments["apt-1"] = appt
	svc := NewService(store, &fakeRenderer{}, 500, nil, nil)

	inv, err := svc.Issue(context.Background(), "apt-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, inv.Amount)
	assert.False(t, inv.Paid)
}

func TestIssueExplicitAmountWins(t *testing.T) {
	store := newFakeStore()
	store.appointments["apt-1"] = eligibleAppointment("apt-1")
	svc := NewService(store, &fakeRenderer{}, 500, nil, nil)

	inv, err := svc.Issue(context.Background(), "apt-1", 1200)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, inv.Amount)
}

func TestIssueResolvesDuplicateRace(t *testing.T) {
	store := newFakeStore()
	store.appointments["apt-1"] = eligibleAppointment("apt-1")

	// A concurrent winner lands between the existence check and the
	// insert: the insert fails with a duplicate and the re-read must
	// return the winner's invoice.
	winner := &models.Invoice{BaseModel: models.BaseModel{ID: "win"}, AppointmentID: "apt-1", Amount: 750}
	store.createErr = ErrDuplicateInvoice
	store.onCreate = func() {
		store.invoices["win"] = winner
		store.byAppt["apt-1"] = "win"
	}
	svc := NewService(store, &fakeRenderer{}, 500, nil, nil)

	inv, err := svc.Issue(context.Background(), "apt-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "win", inv.ID)
}

func TestIssueUnknownAppointment(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeRenderer{}, 500, nil, nil)
	_, err := svc.Issue(context.Background(), "nope", 0)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestIssueSurvivesRenderFailure(t *testing.T) {
	store := newFakeStore()
	store.appointments["apt-1"] = eligibleAppointment("apt-1")
	rend := &fakeRenderer{err: errors.New("font missing")}
	svc := NewService(store, rend, 500, nil, nil)

	inv, err := svc.Issue(context.Background(), "apt-1", 0)
	require.NoError(t, err)
	assert.Empty(t, inv.PDFData)
}

func TestDownloadRendersLazily(t *testing.T) {
	store := newFakeStore()
	store.appointments["apt-1"] = eligibleAppointment("apt-1")
	rend := &fakeRenderer{err: errors.New("first pass fails")}
	svc := NewService(store, rend, 500, nil, nil)

	inv, err := svc.Issue(context.Background(), "apt-1", 0)
	require.NoError(t, err)
	require.Empty(t, inv.PDFData)

	rend.err = nil
	got, data, err := svc.Download(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.NotEmpty(t, data)
	assert.NotEmpty(t, store.invoices[inv.ID].PDFData)
}

func TestDownloadUnknownInvoice(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeRenderer{}, 500, nil, nil)
	_, _, err := svc.Download(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
