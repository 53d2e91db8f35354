package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DevAdminKey is the shared admin key used when none is configured outside production.
const DevAdminKey = "dev-admin-key"

var (
	ErrAdminKeyRequired = errors.New("CHEMIST_ADMIN_KEY is required in production")
	ErrCSRFKeyRequired  = errors.New("CHEMIST_CSRF_KEY is required in production")
	ErrCSRFKeyInvalid   = errors.New("CHEMIST_CSRF_KEY must be 64 hex characters (32 bytes)")
)

// Config holds process configuration. Values come from the environment
// (optionally seeded from a .env file) and may be overridden by a YAML file.
type Config struct {
	Addr             string `yaml:"addr"`
	Env              string `yaml:"env"`
	DBPath           string `yaml:"db_path"`
	AdminKey         string `yaml:"admin_key"`
	CSRFKeyHex       string `yaml:"csrf_key"`
	OperatorEmail    string `yaml:"operator_email"`
	OperatorPassword string `yaml:"operator_password"`
	ResendKey        string `yaml:"resend_key"`
	ResendFrom       string `yaml:"resend_from"`
	ReplyTo          string `yaml:"reply_to"`
	SlowQueryMs      int    `yaml:"slow_query_ms"`
	SlowRequestMs    int    `yaml:"slow_request_ms"`
	RateLimit        int    `yaml:"rate_limit"`
}

// Load reads configuration for the server process.
// PRE: none
// POST: Returns a Config with defaults applied, or an error when the YAML
// overlay named by path (or CHEMIST_CONFIG when path is empty) cannot be read
func Load(path string) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:             getEnv("CHEMIST_ADDR", ":8080"),
		Env:              getEnv("CHEMIST_ENV", EnvDevelopment),
		DBPath:           getEnv("CHEMIST_DB_PATH", "chemistmap.db"),
		AdminKey:         os.Getenv("CHEMIST_ADMIN_KEY"),
		CSRFKeyHex:       os.Getenv("CHEMIST_CSRF_KEY"),
		OperatorEmail:    getEnv("CHEMIST_OPERATOR_EMAIL", "operator@chemistmap.local"),
		OperatorPassword: getEnv("CHEMIST_OPERATOR_PASSWORD", "change-me-please"),
		ResendKey:        os.Getenv("CHEMIST_RESEND_KEY"),
		ResendFrom:       getEnv("CHEMIST_RESEND_FROM", "Chemist MAP <noreply@chemistmap.org>"),
		ReplyTo:          getEnv("CHEMIST_REPLY_TO", ""),
		SlowQueryMs:      getEnvInt("CHEMIST_SLOW_QUERY_MS", 50),
		SlowRequestMs:    getEnvInt("CHEMIST_SLOW_REQUEST_MS", 200),
		RateLimit:        getEnvInt("CHEMIST_RATE_LIMIT", 10),
	}

	if path == "" {
		path = os.Getenv("CHEMIST_CONFIG")
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ResolveAdminKey returns the shared admin key. Production refuses to start
// without one; development falls back to DevAdminKey with a warning.
func (c *Config) ResolveAdminKey() (string, error) {
	if c.AdminKey != "" {
		return c.AdminKey, nil
	}
	if c.IsProduction() {
		return "", ErrAdminKeyRequired
	}
	log.Printf("WARNING: CHEMIST_ADMIN_KEY is not set, using the development key %q", DevAdminKey)
	return DevAdminKey, nil
}

// ResolveCSRFKey decodes the 32-byte CSRF secret. In development a random
// key is generated per start, so form tokens do not survive a restart.
func (c *Config) ResolveCSRFKey() ([]byte, error) {
	if c.CSRFKeyHex != "" {
		key, err := hex.DecodeString(c.CSRFKeyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrCSRFKeyInvalid
		}
		return key, nil
	}
	if c.IsProduction() {
		return nil, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CHEMIST_CSRF_KEY for production.")
	return key, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
