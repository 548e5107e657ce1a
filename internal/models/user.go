package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents an account in the system
type User struct {
	BaseModel
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Role      Role   `gorm:"size:20;default:'patient'" json:"role"`

	// Relations (not always preloaded)
	RefreshTokens  []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
	DoctorProfile  *DoctorProfile  `gorm:"foreignKey:UserID" json:"doctorProfile,omitempty"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID" json:"patientProfile,omitempty"`
}

// DoctorProfile holds doctor-specific details. Doctors must be verified by an
// admin before they are offered for booking.
type DoctorProfile struct {
	BaseModel
	UserID          string `gorm:"size:36;uniqueIndex" json:"userId"`
	Specialization  string `gorm:"size:100" json:"specialization"`
	Contact         string `gorm:"size:15" json:"contact"`
	Qualification   string `gorm:"size:200" json:"qualification,omitempty"`
	ExperienceYears int    `gorm:"default:0" json:"experienceYears"`
	Verified        bool   `gorm:"default:false" json:"verified"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// PatientProfile holds patient-specific details. Patients must be verified by
// an admin before they can book appointments.
type PatientProfile struct {
	BaseModel
	UserID     string `gorm:"size:36;uniqueIndex" json:"userId"`
	Age        *int   `json:"age,omitempty"`
	Contact    string `gorm:"size:15" json:"contact"`
	Address    string `gorm:"type:text" json:"address,omitempty"`
	BloodGroup string `gorm:"size:5" json:"bloodGroup,omitempty"`
	Verified   bool   `gorm:"default:false" json:"verified"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// RefreshToken represents a JWT refresh token in the database
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
