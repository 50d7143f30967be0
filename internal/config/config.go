package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Media backend selection.
const (
	MediaBackendDisk = "disk"
	MediaBackendS3   = "s3"
)

type Config struct {
	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	HTTPListenAddr string
	LogLevel       string

	// ClientHost is the frontend origin, used for CORS and links in
	// outbound email.
	ClientHost string

	EmailHost         string
	EmailPort         string
	EmailHostUser     string
	EmailHostPassword string
	DefaultFromEmail  string

	MediaRoot    string
	MediaBackend string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present, matching local dev setups.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:            getEnv("DB_HOST", ""),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPass:            getEnv("DB_PASS", ""),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ClientHost:        getEnv("CLIENT_HOST", "http://localhost:3000"),
		EmailHost:         getEnv("EMAIL_HOST", ""),
		EmailPort:         getEnv("EMAIL_PORT", "587"),
		EmailHostUser:     getEnv("EMAIL_HOST_USER", ""),
		EmailHostPassword: getEnv("EMAIL_HOST_PASSWORD", ""),
		DefaultFromEmail:  getEnv("DEFAULT_FROM_EMAIL", ""),
		MediaRoot:         getEnv("MEDIA_ROOT", "/vol/web/media"),
		MediaBackend:      getEnv("MEDIA_BACKEND", MediaBackendDisk),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
	}

	if cfg.DefaultFromEmail == "" {
		cfg.DefaultFromEmail = cfg.EmailHostUser
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DBPass == "" {
		missing = append(missing, "DB_PASS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.ClientHost != "" {
		u, err := url.Parse(c.ClientHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CLIENT_HOST must be an absolute URL, got %q", c.ClientHost)
		}
	}

	switch c.MediaBackend {
	case MediaBackendDisk:
	case MediaBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("MEDIA_BACKEND=s3 requires S3_BUCKET")
		}
		if c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("MEDIA_BACKEND=s3 requires S3_ACCESS_KEY and S3_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend)
	}

	return nil
}

// DatabaseURL assembles a postgres connection string from the DB_* variables.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPass), c.DBHost, c.DBPort, c.DBName)
}

// EmailConfigured reports whether outbound email can be sent.
func (c *Config) EmailConfigured() bool {
	return c.EmailHost != "" && c.EmailHostUser != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
