package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vishubh-healthcare-server/internal/billing"
	"vishubh-healthcare-server/internal/payments"
	"vishubh-healthcare-server/internal/scheduling"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, errorMessage)
}

// UnprocessableEntity sends a 422 Unprocessable Entity error response.
func UnprocessableEntity(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnprocessableEntity, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// DomainError maps a service-layer error onto the HTTP status it deserves:
// slot conflicts are 409, rejected transitions and unmet invoice/payment
// preconditions are 422, malformed slots 400, missing records 404.
func DomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrSlotTaken):
		Conflict(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidTransition),
		errors.Is(err, billing.ErrPrecondition):
		UnprocessableEntity(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidSlot):
		BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, payments.ErrVerificationFailed):
		BadRequest(c, err.Error())
	default:
		InternalServerError(c, err.Error())
	}
}
