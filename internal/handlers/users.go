package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/utils"
)

// UserHandler handles user administration: account creation, doctor and
// patient profile management, and profile verification.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// CreateUserRequest represents the request body for creating an account.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=admin doctor patient"`

	// Doctor profile fields, used when role is doctor.
	Specialization  string `json:"specialization"`
	Qualification   string `json:"qualification"`
	ExperienceYears int    `json:"experienceYears"`

	// Patient profile fields, used when role is patient.
	Age        *int   `json:"age"`
	Address    string `json:"address"`
	BloodGroup string `json:"bloodGroup"`

	Contact string `json:"contact"`
}

// CreateUser handles account creation by an administrator. Doctors and
// patients get an unverified profile alongside the account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.Role(req.Role),
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch user.Role {
		case models.RoleDoctor:
			profile := models.DoctorProfile{
				UserID:          user.ID,
				Specialization:  req.Specialization,
				Contact:         req.Contact,
				Qualification:   req.Qualification,
				ExperienceYears: req.ExperienceYears,
			}
			return tx.Create(&profile).Error
		case models.RolePatient:
			profile := models.PatientProfile{
				UserID:     user.ID,
				Age:        req.Age,
				Contact:    req.Contact,
				Address:    req.Address,
				BloodGroup: req.BloodGroup,
			}
			return tx.Create(&profile).Error
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// ListUsers handles listing all accounts, optionally filtered by role.
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := h.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}
	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUser handles fetching a single account with its profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	var user models.User
	query := h.DB.Preload("DoctorProfile").Preload("PatientProfile")
	if err := query.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user)
}

// UpdateUserRequest represents the request body for updating an account.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// UpdateUser handles updating an account's basic fields.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}
	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles removing an account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	result := h.DB.Delete(&models.User{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete user: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "User not found")
		return
	}
	utils.Success(c, "User deleted successfully", nil)
}

// ListDoctors handles listing verified doctors available for booking.
func (h *UserHandler) ListDoctors(c *gin.Context) {
	var profiles []models.DoctorProfile
	query := h.DB.Preload("User").Where("verified = ?", true)
	if spec := c.Query("specialization"); spec != "" {
		query = query.Where("specialization = ?", spec)
	}
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	type doctorView struct {
		models.DoctorProfile
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	views := make([]doctorView, 0, len(profiles))
	for i := range profiles {
		views = append(views, doctorView{
			DoctorProfile: profiles[i],
			Name:          profiles[i].User.FullName(),
			Email:         profiles[i].User.Email,
		})
	}
	utils.Success(c, "Doctors fetched successfully", views)
}

// VerifyDoctor marks a doctor profile as verified so the doctor can be
// assigned to appointments.
func (h *UserHandler) VerifyDoctor(c *gin.Context) {
	h.verifyProfile(c, &models.DoctorProfile{}, "Doctor")
}

// VerifyPatient marks a patient profile as verified so the patient can book
// appointments.
func (h *UserHandler) VerifyPatient(c *gin.Context) {
	h.verifyProfile(c, &models.PatientProfile{}, "Patient")
}

func (h *UserHandler) verifyProfile(c *gin.Context, model interface{}, label string) {
	result := h.DB.Model(model).
		Where("user_id = ?", c.Param("id")).
		Update("verified", true)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to verify profile: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, label+" profile not found")
		return
	}
	utils.Success(c, label+" verified successfully", nil)
}
