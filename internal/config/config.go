package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Database
	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Auth
	ApproverUsername string
	JWTSecret        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	RedisURL         string

	// Blob storage
	BlobBackend    string // fs or minio
	BlobDir        string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// SMTP - email alerts are disabled unless host and from are set
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string
	SMTPTimeout   time.Duration
	ApproverEmail string

	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	SeedFile    string
}

// Load reads envFile when present and then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Port:             getenv("PORT", "8080"),
		DBDriver:         getenv("DB_DRIVER", "postgres"),
		DBHost:           getenv("DB_HOST", "localhost"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBUser:           getenv("DB_USER", "postgres"),
		DBPassword:       getenv("DB_PASSWORD", "postgres"),
		DBName:           getenv("DB_NAME", "postgres"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		SQLitePath:       getenv("SQLITE_PATH", "dashboard.db"),
		ApproverUsername: getenv("APPROVER_USERNAME", "kush"),
		JWTSecret:        getenv("JWT_SECRET", ""),
		AccessTTL:        time.Duration(getenvInt("ACCESS_TTL_SECONDS", 86400)) * time.Second,
		RefreshTTL:       time.Duration(getenvInt("REFRESH_TTL_SECONDS", 604800)) * time.Second,
		RedisURL:         getenv("REDIS_URL", "redis://localhost:6379/0"),
		BlobBackend:      getenv("BLOB_BACKEND", "fs"),
		BlobDir:          getenv("BLOB_DIR", "./data/blobs"),
		MinioEndpoint:    getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:      getenv("MINIO_BUCKET", "dashboard-blobs"),
		MinioUseSSL:      getenvBool("MINIO_USE_SSL", false),
		SMTPHost:         getenv("SMTP_HOST", ""),
		SMTPPort:         getenv("SMTP_PORT", "587"),
		SMTPUsername:     getenv("SMTP_USERNAME", ""),
		SMTPPassword:     getenv("SMTP_PASSWORD", ""),
		SMTPFrom:         getenv("SMTP_FROM", ""),
		SMTPTimeout:      time.Duration(getenvInt("SMTP_TIMEOUT_SECONDS", 10)) * time.Second,
		ApproverEmail:    getenv("APPROVER_EMAIL", ""),
		CORSOrigins:      splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "text"),
		SeedFile:         getenv("SEED_FILE", ""),
	}

	if cfg.JWTSecret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return Config{}, fmt.Errorf("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = "default_super_secret_key" // development fallback only
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.BlobBackend != "fs" && cfg.BlobBackend != "minio" {
		return Config{}, fmt.Errorf("unsupported BLOB_BACKEND %q", cfg.BlobBackend)
	}

	return cfg, nil
}

// PostgresDSN builds the connection URL for the postgres driver.
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
