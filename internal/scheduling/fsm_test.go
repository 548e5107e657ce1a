package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vishubh-healthcare-server/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.AppointmentStatus
		want     bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusConfirmed, models.StatusCompleted, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusPending, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCompleted, models.StatusConfirmed, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransitionPayment(t *testing.T) {
	tests := []struct {
		from, to models.PaymentStatus
		want     bool
	}{
		{models.PaymentPending, models.PaymentPaid, true},
		{models.PaymentPending, models.PaymentFailed, true},
		{models.PaymentPending, models.PaymentRefunded, false},
		{models.PaymentFailed, models.PaymentPending, true},
		{models.PaymentFailed, models.PaymentPaid, false},
		{models.PaymentPaid, models.PaymentRefunded, true},
		{models.PaymentPaid, models.PaymentPending, false},
		{models.PaymentRefunded, models.PaymentPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionPayment(tt.from, tt.to))
		})
	}
}
