package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/middleware"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/scheduling"
	"vishubh-healthcare-server/internal/utils"
)

// AppointmentHandler exposes the appointment lifecycle over HTTP: booking,
// listing, status changes, doctor assignment, and rescheduling.
type AppointmentHandler struct {
	DB        *gorm.DB
	Scheduler *scheduling.Service
	Fee       float64
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, scheduler *scheduling.Service, fee float64) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler, Fee: fee}
}

// BookAppointmentRequest represents the request body for booking.
type BookAppointmentRequest struct {
	DoctorID string  `json:"doctorId"`
	Date     string  `json:"date" binding:"required"`
	Time     string  `json:"time" binding:"required"`
	Symptoms string  `json:"symptoms"`
	Amount   float64 `json:"amount"`
}

// Book handles a patient booking an appointment. The slot may name a doctor
// up front or be left for admin assignment.
func (h *AppointmentHandler) Book(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var profile models.PatientProfile
	if err := h.DB.First(&profile, "user_id = ?", actor.ID).Error; err != nil {
		utils.Forbidden(c, "Patient profile not found")
		return
	}
	if !profile.Verified {
		utils.Forbidden(c, "Patient profile is not verified yet")
		return
	}

	params := scheduling.BookParams{
		PatientID: actor.ID,
		Date:      req.Date,
		Time:      req.Time,
		Symptoms:  req.Symptoms,
		Amount:    req.Amount,
	}
	if params.Amount <= 0 {
		params.Amount = h.Fee
	}
	if req.DoctorID != "" {
		if !h.doctorBookable(c, req.DoctorID) {
			return
		}
		params.DoctorID = &req.DoctorID
	}

	appt, err := h.Scheduler.Book(c.Request.Context(), params)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}

// List handles listing appointments scoped to the caller's role: patients
// see their own, doctors see their assignments, admins see everything.
func (h *AppointmentHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var (
		appts []models.Appointment
		err   error
	)
	switch {
	case actor.IsPatient():
		appts, err = h.Scheduler.ListForPatient(c.Request.Context(), actor.ID)
	case actor.IsDoctor():
		appts, err = h.Scheduler.ListForDoctor(c.Request.Context(), actor.ID)
	default:
		appts, err = h.Scheduler.ListAll(c.Request.Context())
	}
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// Get handles fetching a single appointment. Patients and doctors may only
// see appointments they are party to.
func (h *AppointmentHandler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Scheduler.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !h.canView(actor, appt) {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}
	utils.Success(c, "Appointment fetched successfully", appt)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed completed cancelled"`
}

// UpdateStatus handles appointment status changes. Confirmation and
// completion are doctor/admin actions; cancellation is open to the patient
// as well.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	target := models.AppointmentStatus(req.Status)

	appt, err := h.Scheduler.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !h.canView(actor, appt) {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}
	if actor.IsPatient() && target != models.StatusCancelled {
		utils.Forbidden(c, "Patients may only cancel appointments")
		return
	}

	updated, err := h.Scheduler.UpdateStatus(c.Request.Context(), appt.ID, target)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated", updated)
}

// AssignDoctorRequest represents the request body for doctor assignment.
type AssignDoctorRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
}

// AssignDoctor handles an admin assigning a doctor to an appointment. The
// assignment claims the doctor's slot, so a taken slot rejects it.
func (h *AppointmentHandler) AssignDoctor(c *gin.Context) {
	var req AssignDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.doctorBookable(c, req.DoctorID) {
		return
	}

	appt, err := h.Scheduler.AssignDoctor(c.Request.Context(), c.Param("id"), req.DoctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Doctor assigned successfully", appt)
}

// RescheduleRequest represents the request body for rescheduling.
type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// Reschedule handles moving an appointment to a different slot.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Scheduler.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if !h.canView(actor, appt) {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}

	updated, err := h.Scheduler.Reschedule(c.Request.Context(), appt.ID, req.Date, req.Time)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Appointment rescheduled successfully", updated)
}

// CheckSlot handles the free-slot pre-check for a doctor, date and time.
// Advisory only; booking remains the authoritative check.
func (h *AppointmentHandler) CheckSlot(c *gin.Context) {
	doctorID := c.Query("doctorId")
	date := c.Query("date")
	timeOfDay := c.Query("time")
	if doctorID == "" || date == "" || timeOfDay == "" {
		utils.BadRequest(c, "doctorId, date and time query parameters are required")
		return
	}

	free, err := h.Scheduler.IsSlotFree(c.Request.Context(), doctorID, date, timeOfDay, "")
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	utils.Success(c, "Slot availability checked", gin.H{"available": free})
}

func (h *AppointmentHandler) canView(actor middleware.Actor, appt *models.Appointment) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsPatient():
		return appt.PatientID == actor.ID
	case actor.IsDoctor():
		return appt.DoctorID != nil && *appt.DoctorID == actor.ID
	}
	return false
}

// doctorBookable verifies the referenced doctor exists and is verified,
// writing the error response when not.
func (h *AppointmentHandler) doctorBookable(c *gin.Context, doctorID string) bool {
	var profile models.DoctorProfile
	if err := h.DB.First(&profile, "user_id = ?", doctorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return false
	}
	if !profile.Verified {
		utils.BadRequest(c, "Doctor is not verified")
		return false
	}
	return true
}
