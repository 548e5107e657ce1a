package models

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// PaymentStatus is the independent payment axis of an appointment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Wire formats for appointment dates and times-of-day.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment represents a scheduled medical appointment.
//
// SlotKey is "doctorID|date|time" while the appointment is active
// (pending/confirmed) and a doctor is assigned, NULL otherwise. Its unique
// index is the authoritative guard against double-booking: the application
// level free-slot check is only an optimistic pre-check.
type Appointment struct {
	BaseModel
	PatientID string  `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID  *string `gorm:"size:36;index" json:"doctorId,omitempty"`
	Date      string  `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time      string  `gorm:"size:5;not null" json:"time"`  // HH:MM
	Symptoms  string  `gorm:"type:text" json:"symptoms"`

	Status  AppointmentStatus `gorm:"size:15;default:'pending'" json:"status"`
	SlotKey *string           `gorm:"size:64;uniqueIndex" json:"-"`

	PaymentStatus  PaymentStatus `gorm:"size:15;default:'pending'" json:"paymentStatus"`
	PaymentAmount  float64       `gorm:"default:0" json:"paymentAmount"`
	PaymentOrderID string        `gorm:"size:64" json:"paymentOrderId,omitempty"`
	PaymentID      string        `gorm:"size:64" json:"paymentId,omitempty"`

	ReminderSent bool `gorm:"default:false" json:"reminderSent"`

	// Relations
	Patient User  `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsActive reports whether the appointment occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// IsTerminal reports whether no further status transitions are accepted.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// ComputeSlotKey derives the uniqueness key the appointment should carry.
// Returns nil when the appointment holds no slot (no doctor, or terminal).
func (a *Appointment) ComputeSlotKey() *string {
	if a.DoctorID == nil || *a.DoctorID == "" || !a.IsActive() {
		return nil
	}
	key := *a.DoctorID + "|" + a.Date + "|" + a.Time
	return &key
}
