package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvDevelopment marks the local-development profile. It is the only profile
// allowed to run without an explicit token secret or database URL.
const EnvDevelopment = "development"

// Config captures environment driven configuration values for the service.
type Config struct {
	Environment string
	HTTPPort    int
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	UploadDir   string

	// GeneratedSecret reports that JWTSecret was generated at startup because
	// none was configured (development profile only).
	GeneratedSecret bool
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is read first when present. Optional
// fields fall back to defaults; required values are validated and reported
// together so operators see every problem at once.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: "production",
		HTTPPort:    8080,
		TokenTTL:    time.Hour,
		UploadDir:   "uploads",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if env := strings.TrimSpace(os.Getenv("CHARGINGHUB_ENV")); env != "" {
		cfg.Environment = strings.ToLower(env)
	}

	if portValue := strings.TrimSpace(os.Getenv("CHARGINGHUB_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CHARGINGHUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("CHARGINGHUB_DATABASE_URL"))
	if cfg.DatabaseURL == "" && cfg.Environment != EnvDevelopment {
		missing = append(missing, "CHARGINGHUB_DATABASE_URL")
	}

	if secret := strings.TrimSpace(os.Getenv("CHARGINGHUB_JWT_SECRET")); secret != "" {
		cfg.JWTSecret = secret
	} else if cfg.Environment == EnvDevelopment {
		cfg.JWTSecret = randomSecret()
		cfg.GeneratedSecret = true
	} else {
		missing = append(missing, "CHARGINGHUB_JWT_SECRET")
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CHARGINGHUB_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CHARGINGHUB_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if dir := strings.TrimSpace(os.Getenv("CHARGINGHUB_UPLOAD_DIR")); dir != "" {
		cfg.UploadDir = dir
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente obrigatórias não configuradas: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente com valor inválido: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// IsDevelopment reports whether the local-development profile is active.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("dev-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
