package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	OwnerEmail      string

	CloudinaryURL string
	UploadFolder  string

	SMTPHost          string
	SMTPPort          string
	SMTPSecure        bool
	SMTPUser          string
	SMTPPass          string
	EmailTo           string
	EmailFrom         string
	EmailCustomerCopy bool

	AllowedOrigins []string

	// ExternalTimeout bounds each image upload and email send so a slow
	// provider cannot stall a request.
	ExternalTimeout time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Port:            getEnvOrDefault("PORT", "5000"),
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "winnystudios"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		OwnerEmail:      strings.ToLower(getEnvOrDefault("OWNER_EMAIL", "")),

		CloudinaryURL: getEnvOrDefault("CLOUDINARY_URL", ""),
		UploadFolder:  getEnvOrDefault("CLOUDINARY_FOLDER", "orders"),

		SMTPHost:          getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:          getEnvOrDefault("SMTP_PORT", "465"),
		SMTPSecure:        getBoolEnv("SMTP_SECURE", false),
		SMTPUser:          getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:          getEnvOrDefault("SMTP_PASS", ""),
		EmailTo:           getEnvOrDefault("EMAIL_TO", ""),
		EmailFrom:         getEnvOrDefault("EMAIL_FROM", os.Getenv("SMTP_USER")),
		EmailCustomerCopy: getBoolEnv("EMAIL_CUSTOMER_COPY", false),

		AllowedOrigins: getListEnv("CLIENT_ORIGINS", "http://localhost:5173"),

		ExternalTimeout: getDurationEnv("EXTERNAL_CALL_TIMEOUT", 5, time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnvOrDefault(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
