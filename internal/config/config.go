package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the evidence API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// UploadConfig bounds the upload pipeline.
type UploadConfig struct {
	MaxFileSize   int64
	MaxBatchFiles int
	Folder        string
	PresignTTL    time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// ConfigurationError reports settings that are missing or invalid at startup.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing or invalid configuration: %s", strings.Join(e.Missing, ", "))
}

// Load reads configuration values from environment variables, applying
// defaults. Settings without a safe default (object store credentials and
// bucket) stay empty and are caught by Validate.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("EVIDENCE_API_HOST", "0.0.0.0"),
			Port:         getInt("EVIDENCE_API_PORT", 8080),
			ReadTimeout:  getDuration("EVIDENCE_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("EVIDENCE_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("EVIDENCE_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "evidence_app"),
			Password: getString("POSTGRES_PASSWORD", ""),
			Database: getString("POSTGRES_DB", "evidence"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", ""),
			AccessKeyID:     getString("MINIO_ROOT_USER", ""),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", ""),
			Bucket:          getString("MINIO_BUCKET", ""),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Upload: UploadConfig{
			MaxFileSize:   getInt64("EVIDENCE_MAX_FILE_SIZE", 10*1024*1024),
			MaxBatchFiles: getInt("EVIDENCE_MAX_BATCH_FILES", 5),
			Folder:        getString("EVIDENCE_UPLOAD_FOLDER", "evidence"),
			PresignTTL:    getDuration("EVIDENCE_PRESIGN_TTL", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("EVIDENCE_METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// Validate checks that every setting without a usable default has been
// provided. A non-nil result is fatal: the process must not serve requests.
func (c Config) Validate() error {
	var missing []string

	if c.MinIO.Endpoint == "" {
		missing = append(missing, "MINIO_ENDPOINT")
	}
	if c.MinIO.AccessKeyID == "" {
		missing = append(missing, "MINIO_ROOT_USER")
	}
	if c.MinIO.SecretAccessKey == "" {
		missing = append(missing, "MINIO_ROOT_PASSWORD")
	}
	if c.MinIO.Bucket == "" {
		missing = append(missing, "MINIO_BUCKET")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Upload.MaxFileSize <= 0 {
		missing = append(missing, "EVIDENCE_MAX_FILE_SIZE")
	}
	if c.Upload.MaxBatchFiles <= 0 {
		missing = append(missing, "EVIDENCE_MAX_BATCH_FILES")
	}
	if c.Upload.Folder == "" {
		missing = append(missing, "EVIDENCE_UPLOAD_FOLDER")
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
