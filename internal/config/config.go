package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application. It is loaded once in
// main and passed to the components that need it; nothing reads the
// environment after startup.
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	LogLevel                  string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Razorpay                  RazorpayConfig
	SendGrid                  SendGridConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	ConsultationFee           float64
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RazorpayConfig holds payment gateway credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// SendGridConfig holds email delivery configuration. An empty APIKey
// disables outbound email.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "healthcare"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	razorpayConfig := RazorpayConfig{
		KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
	}

	sendGridConfig := SendGridConfig{
		APIKey:    getEnv("SENDGRID_API_KEY", ""),
		FromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@vishubhhealthcare.com"),
		FromName:  getEnv("SENDGRID_FROM_NAME", "Vishubh Healthcare"),
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	consultationFee, err := strconv.ParseFloat(getEnv("CONSULTATION_FEE", "500"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CONSULTATION_FEE: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		Razorpay:                  razorpayConfig,
		SendGrid:                  sendGridConfig,
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		ConsultationFee:           consultationFee,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
