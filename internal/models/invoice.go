package models

import "time"

// Invoice bills exactly one appointment. The unique index on AppointmentID
// backs the at-most-one-invoice-per-appointment guarantee; issuing is
// idempotent at the service level.
type Invoice struct {
	BaseModel
	AppointmentID string    `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Amount        float64   `gorm:"not null" json:"amount"`
	GeneratedAt   time.Time `json:"generatedAt"`
	Paid          bool      `gorm:"default:false" json:"paid"`
	PDFData       []byte    `gorm:"type:mediumblob" json:"-"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
