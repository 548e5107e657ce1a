package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vishubh-healthcare-server/internal/models"
)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, nil, nil), store
}

func strptr(s string) *string { return &s }

func TestBookRejectsMalformedSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Book(ctx, BookParams{PatientID: "p1", Date: "10-06-2024", Time: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = svc.Book(ctx, BookParams{PatientID: "p1", Date: "2024-06-10", Time: "25:99"})
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBookConflictAndCancelFreesSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00", Amount: 500,
	})
	require.NoError(t, err)
	require.NotNil(t, first.SlotKey)
	assert.Equal(t, "docA|2024-06-10|10:00", *first.SlotKey)

	// Same doctor, same slot: rejected.
	_, err = svc.Book(ctx, BookParams{
		PatientID: "p2", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Different time is fine.
	_, err = svc.Book(ctx, BookParams{
		PatientID: "p2", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "11:00",
	})
	require.NoError(t, err)

	// Cancelling frees the slot; the identical request then succeeds.
	cancelled, err := svc.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.SlotKey)

	_, err = svc.Book(ctx, BookParams{
		PatientID: "p2", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	assert.NoError(t, err)
}

func TestBookWithoutDoctorHoldsNoSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Book(ctx, BookParams{PatientID: "p1", Date: "2024-06-10", Time: "10:00"})
	require.NoError(t, err)
	assert.Nil(t, a.SlotKey)

	// Unassigned bookings never collide with each other.
	_, err = svc.Book(ctx, BookParams{PatientID: "p2", Date: "2024-06-10", Time: "10:00"})
	assert.NoError(t, err)
}

func TestConfirmRequiresAssignedDoctor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Book(ctx, BookParams{PatientID: "p1", Date: "2024-06-10", Time: "10:00"})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.AssignDoctor(ctx, a.ID, "docA")
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.SlotKey)
}

func TestAssignDoctorClaimsSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)

	unassigned, err := svc.Book(ctx, BookParams{PatientID: "p2", Date: "2024-06-10", Time: "10:00"})
	require.NoError(t, err)

	// Assigning docA would double-book the slot.
	_, err = svc.AssignDoctor(ctx, unassigned.ID, "docA")
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Another doctor is free.
	got, err := svc.AssignDoctor(ctx, unassigned.ID, "docB")
	require.NoError(t, err)
	require.NotNil(t, got.DoctorID)
	assert.Equal(t, "docB", *got.DoctorID)
}

func TestTerminalStatesAcceptNoTransitions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, a.ID)
	require.NoError(t, err)
	done, err := svc.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Nil(t, done.SlotKey)

	_, err = svc.Complete(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Cancel(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Confirm(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.AssignDoctor(ctx, a.ID, "docB")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPendingCannotComplete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReschedule(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)
	b, err := svc.Book(ctx, BookParams{
		PatientID: "p2", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "11:00",
	})
	require.NoError(t, err)

	// Moving onto an occupied slot is rejected.
	_, err = svc.Reschedule(ctx, b.ID, "2024-06-10", "10:00")
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Re-saving the same slot is an idempotent no-conflict.
	moved, err := svc.Reschedule(ctx, b.ID, "2024-06-10", "11:00")
	require.NoError(t, err)
	assert.Equal(t, "11:00", moved.Time)

	// A genuinely free slot works.
	moved, err = svc.Reschedule(ctx, b.ID, "2024-06-11", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-11", moved.Date)
	require.NotNil(t, moved.SlotKey)
	assert.Equal(t, "docA|2024-06-11|10:00", *moved.SlotKey)

	// Terminal appointments cannot move.
	_, err = svc.Cancel(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.Reschedule(ctx, a.ID, "2024-06-12", "09:00")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIsSlotFreeExcludesSelf(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)

	free, err := svc.IsSlotFree(ctx, "docA", "2024-06-10", "10:00", "")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.IsSlotFree(ctx, "docA", "2024-06-10", "10:00", a.ID)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestGetUnknownAppointment(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmDoesNotRevertConcurrentReschedule(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	appt, err := svc.Book(ctx, BookParams{
		PatientID: "p1", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)

	// Confirm reads the row, then a reschedule commits before Confirm's
	// conditional write lands.
	stale, err := store.Get(ctx, appt.ID)
	require.NoError(t, err)

	moved, err := svc.Reschedule(ctx, appt.ID, "2024-06-10", "11:00")
	require.NoError(t, err)
	require.NotNil(t, moved.SlotKey)
	require.Equal(t, "docA|2024-06-10|11:00", *moved.SlotKey)

	ok, err := store.Transition(ctx, stale.ID,
		[]models.AppointmentStatus{models.StatusPending}, models.StatusConfirmed, false)
	require.NoError(t, err)
	require.True(t, ok)

	// The row still holds the rescheduled slot, not the stale one.
	got, err := store.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	require.NotNil(t, got.SlotKey)
	assert.Equal(t, "docA|2024-06-10|11:00", *got.SlotKey)

	// The vacated 10:00 slot is genuinely free again.
	_, err = svc.Book(ctx, BookParams{
		PatientID: "p2", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "10:00",
	})
	require.NoError(t, err)

	// And the occupied 11:00 slot keeps its guard.
	_, err = svc.Book(ctx, BookParams{
		PatientID: "p3", DoctorID: strptr("docA"), Date: "2024-06-10", Time: "11:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
}
