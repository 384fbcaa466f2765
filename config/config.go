// config.go - Handles configuration for the marketplace backend

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	ErrMissingJWTSecret     = errors.New("JWT_SECRET must be set")
	ErrMissingEncryptionKey = errors.New("ENCRYPTION_KEY must be set")
)

// Config holds every runtime setting of the server and the CLI.
type Config struct {
	Port string // HTTP listen port

	DatabaseURI  string // mongodb://, postgres:// or a SQLite file path
	DatabaseName string // Database name used by the document store

	JWTSecret     string // HMAC key for session tokens
	EncryptionKey string // Key material for product secrets
	BcryptCost    int

	LogLevel string
	LogJSON  bool

	MQTTBroker      string // Empty disables event publishing
	MQTTClientID    string
	MQTTTopicPrefix string

	S3Bucket       string // Empty disables object storage
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string

	AdminEmail     string
	AdminPassword  string
	AdminName      string
	SeedSampleData bool

	CookieSecure bool
}

// Load reads config from the environment, after merging an optional .env file.
func Load() *Config {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURI:     getEnv("DATABASE_URI", getEnv("MONGODB_URI", "market.db")),
		DatabaseName:    getEnv("DATABASE_NAME", "1place"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		EncryptionKey:   os.Getenv("ENCRYPTION_KEY"),
		BcryptCost:      getEnvInt("BCRYPT_COST", 12),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogJSON:         getEnvBool("LOG_JSON", false),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "go-market-backend"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "market"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3BaseEndpoint:  os.Getenv("S3_BASE_ENDPOINT"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@1place.com"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		AdminName:       getEnv("ADMIN_NAME", "Admin User"),
		SeedSampleData:  getEnvBool("SEED_SAMPLE_DATA", true),
		CookieSecure:    getEnvBool("COOKIE_SECURE", false),
	}
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if strings.TrimSpace(c.EncryptionKey) == "" {
		return ErrMissingEncryptionKey
	}
	return nil
}

// S3Enabled reports whether object storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
