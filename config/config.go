// Package config provides configuration management for the storefront application.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting:
// every problem found is reported at once instead of failing on the first one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Image backends understood by IMAGE_STORAGE.
const (
	ImageStorageLocal = "local"
	ImageStorageS3    = "s3"
)

// minJWTSecretLen is the shortest HS256 key accepted.
const minJWTSecretLen = 32

// bcrypt's own bounds; duplicated here so config has no crypto import.
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

// PoolConfig represents configuration for a single database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// StoreConfig selects the backing store for users, products and orders.
type StoreConfig struct {
	Driver string      // "memory" or "postgres"
	Pool   *PoolConfig // nil unless Driver is "postgres"
}

// AuthConfig holds authentication-related configuration.
// JWTSecret is security critical: whoever holds it can mint admin tokens.
type AuthConfig struct {
	JWTSecret        string
	BcryptCost       int
	FirstUserIsAdmin bool   // first registrant on an empty store becomes admin
	AdminEmail       string // optional explicit admin seed
	AdminPassword    string
}

// PaymentConfig holds payment gateway configuration.
type PaymentConfig struct {
	StripeSecretKey     string
	StripeAPIURL        string // optional backend override
	Currency            string
	RequireConfirmation bool // verify the payment intent before recording an order
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port               string
	StaticDir          string
	UploadsDir         string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// S3Config points product image storage at an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
}

// ImageConfig selects where uploaded product images are written.
type ImageConfig struct {
	Backend string    // "local" or "s3"
	S3      *S3Config // nil unless Backend is "s3"
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Server  *ServerConfig
	Auth    *AuthConfig
	Payment *PaymentConfig
	Store   *StoreConfig
	Images  *ImageConfig
	Log     *LogConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set or blank.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as a bool.
func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// getOptionalEnvList splits a comma separated variable, dropping blanks.
func getOptionalEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// clampPoolSize keeps pool sizes between 5 and 100, noting any adjustment.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Server Configuration
	serverConfig := &ServerConfig{
		Port:               getOptionalEnv("PORT", "8080"),
		StaticDir:          getOptionalEnv("STATIC_DIR", "./public"),
		UploadsDir:         getOptionalEnv("UPLOADS_DIR", "./uploads"),
		CORSAllowedOrigins: getOptionalEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout:    getOptionalEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &errors),
	}

	// Auth Configuration
	jwtSecret := getRequiredEnv("JWT_SECRET", &errors)
	if jwtSecret != "" && len(jwtSecret) < minJWTSecretLen {
		errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d bytes", minJWTSecretLen))
	}
	bcryptCost := getOptionalEnvInt("BCRYPT_COST", 10, &errors)
	if bcryptCost < minBcryptCost || bcryptCost > maxBcryptCost {
		errors = append(errors, fmt.Sprintf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, bcryptCost))
	}
	adminEmail := getOptionalEnv("ADMIN_EMAIL", "")
	adminPassword := getOptionalEnv("ADMIN_PASSWORD", "")
	if (adminEmail == "") != (adminPassword == "") {
		errors = append(errors, "ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	authConfig := &AuthConfig{
		JWTSecret:        jwtSecret,
		BcryptCost:       bcryptCost,
		FirstUserIsAdmin: getOptionalEnvBool("AUTH_FIRST_USER_ADMIN", true, &errors),
		AdminEmail:       adminEmail,
		AdminPassword:    adminPassword,
	}

	// Payment Configuration
	paymentConfig := &PaymentConfig{
		StripeSecretKey:     getRequiredEnv("STRIPE_SECRET_KEY", &errors),
		StripeAPIURL:        getOptionalEnv("STRIPE_API_URL", ""),
		Currency:            strings.ToLower(getOptionalEnv("PAYMENT_CURRENCY", "usd")),
		RequireConfirmation: getOptionalEnvBool("PAYMENT_REQUIRE_CONFIRMATION", true, &errors),
	}

	// Store Configuration
	storeConfig := &StoreConfig{Driver: strings.ToLower(getOptionalEnv("STORE_DRIVER", StoreMemory))}
	switch storeConfig.Driver {
	case StoreMemory:
	case StorePostgres:
		storeConfig.Pool = &PoolConfig{
			Host:     getOptionalEnv("DB_HOST", "localhost"),
			Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
			User:     getRequiredEnv("DB_USER", &errors),
			Password: getRequiredEnv("DB_PASSWORD", &errors),
			DBName:   getRequiredEnv("DB_NAME", &errors),
			MaxSize:  clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), "DB_POOL_SIZE", &errors),
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid value for STORE_DRIVER: %q (want %q or %q)", storeConfig.Driver, StoreMemory, StorePostgres))
	}

	// Image storage
	imageConfig := &ImageConfig{Backend: strings.ToLower(getOptionalEnv("IMAGE_STORAGE", ImageStorageLocal))}
	switch imageConfig.Backend {
	case ImageStorageLocal:
	case ImageStorageS3:
		imageConfig.S3 = &S3Config{
			Bucket:    getRequiredEnv("S3_BUCKET", &errors),
			Region:    getOptionalEnv("S3_REGION", "us-east-1"),
			Endpoint:  getOptionalEnv("S3_ENDPOINT", ""),
			AccessKey: getRequiredEnv("S3_ACCESS_KEY", &errors),
			SecretKey: getRequiredEnv("S3_SECRET_KEY", &errors),
			PublicURL: strings.TrimRight(getRequiredEnv("S3_PUBLIC_URL", &errors), "/"),
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid value for IMAGE_STORAGE: %q (want %q or %q)", imageConfig.Backend, ImageStorageLocal, ImageStorageS3))
	}

	logConfig := &LogConfig{
		Level:  strings.ToLower(getOptionalEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getOptionalEnv("LOG_FORMAT", "json")),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Server:  serverConfig,
		Auth:    authConfig,
		Payment: paymentConfig,
		Store:   storeConfig,
		Images:  imageConfig,
		Log:     logConfig,
	}, nil
}
