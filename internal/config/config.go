package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session storage backends.
const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Image output backends.
const (
	OutputBackendDisk  = "disk"
	OutputBackendMinio = "minio"
)

// Config contains client configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	API      API     `envPrefix:"API_"`
	Session  Session `envPrefix:"SESSION_"`
	Output   Output  `envPrefix:"OUTPUT_"`
	Storage  Storage `envPrefix:"MINIO_"`
}

// API contains image service connection parameters.
type API struct {
	BaseURL            string        `env:"BASE_URL" envDefault:"http://127.0.0.1:8000"`
	Timeout            time.Duration `env:"TIMEOUT" envDefault:"2m"`
	CACertFile         string        `env:"CA_CERT_FILE"`
	InsecureSkipVerify bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
}

// Session contains durable session storage parameters.
type Session struct {
	Backend       string `env:"BACKEND" envDefault:"file"`
	Path          string `env:"PATH"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"imagestudio:"`
}

// Output contains parameters of the sink generated and exported images go to.
type Output struct {
	Backend       string `env:"BACKEND" envDefault:"disk"`
	Dir           string `env:"DIR" envDefault:"imagestudio-output"`
	ThumbnailSize uint   `env:"THUMBNAIL_SIZE" envDefault:"0"`
}

// Storage contains object storage parameters.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"imagestudio-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"imagestudio-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"imagestudio-images"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from a .env file, if any, and environment variables.
func NewConfig() (*Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if cfg.Session.Path == "" {
		cfg.Session.Path = defaultSessionPath(cfg.Session.Backend)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks backend names and required values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL must not be empty")
	}

	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendSQLite, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	switch c.Output.Backend {
	case OutputBackendDisk, OutputBackendMinio:
	default:
		return fmt.Errorf("unknown OUTPUT_BACKEND %q", c.Output.Backend)
	}

	return nil
}

func defaultSessionPath(backend string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	name := "session.json"
	if backend == SessionBackendSQLite {
		name = "session.db"
	}

	return filepath.Join(dir, "imagestudio", name)
}
