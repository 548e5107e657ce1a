package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vishubh-healthcare-server/internal/billing"
	"vishubh-healthcare-server/internal/config"
	"vishubh-healthcare-server/internal/middleware"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/scheduling"
)

type fakeBillingStore struct {
	appt     *models.Appointment
	invoices map[string]*models.Invoice
}

func (s *fakeBillingStore) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	if s.appt == nil || s.appt.ID != id {
		return nil, scheduling.ErrNotFound
	}
	return s.appt, nil
}

func (s *fakeBillingStore) InvoiceForAppointment(_ context.Context, appointmentID string) (*models.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.AppointmentID == appointmentID {
			return inv, nil
		}
	}
	return nil, nil
}

func (s *fakeBillingStore) GetInvoice(_ context.Context, id string) (*models.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *fakeBillingStore) CreateInvoice(_ context.Context, inv *models.Invoice) error {
	inv.ID = "inv-1"
	s.invoices[inv.ID] = inv
	return nil
}

func (s *fakeBillingStore) SavePDF(_ context.Context, invoiceID string, data []byte) error {
	if inv, ok := s.invoices[invoiceID]; ok {
		inv.PDFData = data
	}
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ *models.Invoice, _ *models.Appointment) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func invoiceRouter(cfg *config.Config, store *fakeBillingStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := billing.NewService(store, fakeRenderer{}, 500, nil, nil)
	h := NewInvoiceHandler(svc)

	r := gin.New()
	group := r.Group("/appointments", middleware.AuthMiddleware(cfg))
	group.POST("/:id/invoice",
		middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), h.Issue)
	return r
}

func billableAppointment() *models.Appointment {
	doctor := "doc-1"
	return &models.Appointment{
		BaseModel:     models.BaseModel{ID: "apt-1"},
		PatientID:     "pat-1",
		DoctorID:      &doctor,
		Status:        models.StatusCompleted,
		PaymentStatus: models.PaymentPaid,
		PaymentAmount: 750,
	}
}

func TestIssueInvoiceWithoutBody(t *testing.T) {
	cfg := testConfig()
	store := &fakeBillingStore{appt: billableAppointment(), invoices: map[string]*models.Invoice{}}
	r := invoiceRouter(cfg, store)

	token := tokenFor(t, cfg, "admin-1", models.RoleAdmin)
	w := doJSON(t, r, http.MethodPost, "/appointments/apt-1/invoice", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	inv := store.invoices["inv-1"]
	require.NotNil(t, inv)
	assert.Equal(t, 750.0, inv.Amount)
	assert.True(t, inv.Paid)
}

func TestIssueInvoiceRejectsMalformedBody(t *testing.T) {
	cfg := testConfig()
	store := &fakeBillingStore{appt: billableAppointment(), invoices: map[string]*models.Invoice{}}
	r := invoiceRouter(cfg, store)

	token := tokenFor(t, cfg, "admin-1", models.RoleAdmin)
	req := httptest.NewRequest(http.MethodPost, "/appointments/apt-1/invoice",
		strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.invoices)
}
