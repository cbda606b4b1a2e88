// Package config reads CLI defaults from the environment. Core packages
// never read the environment themselves; flags override what is loaded here.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/AnyUserName/photoedit/internal/matte"
)

// Matte backends.
const (
	MatteExec = "exec"
	MatteHTTP = "http"
	MatteNone = "none"
)

type Config struct {
	Matte        string        // exec, http or none
	RembgPath    string        // binary for the exec backend
	RembgModel   string        // model name passed to rembg, empty for its default
	RembgURL     string        // endpoint for the http backend
	MaskOnly     bool          // ask rembg for a bare mask instead of a cutout
	MatteTimeout time.Duration // 0 means no deadline
	Workers      int
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Matte:        strings.ToLower(strings.TrimSpace(getEnvOrDefault("PHOTOEDIT_MATTE", MatteExec))),
		RembgPath:    getEnvOrDefault("PHOTOEDIT_REMBG_PATH", "rembg"),
		RembgModel:   getEnvOrDefault("PHOTOEDIT_REMBG_MODEL", ""),
		RembgURL:     getEnvOrDefault("PHOTOEDIT_REMBG_URL", matte.DefaultEndpoint),
		MaskOnly:     parseBoolOrDefault("PHOTOEDIT_REMBG_MASK_ONLY", false),
		MatteTimeout: parseDurationOrDefault("PHOTOEDIT_MATTE_TIMEOUT", 0),
		Workers:      int(parseIntOrDefault("PHOTOEDIT_WORKERS", int64(runtime.NumCPU()))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values after flags have been applied.
func (c *Config) Validate() error {
	switch c.Matte {
	case MatteExec, MatteHTTP, MatteNone:
	default:
		return fmt.Errorf("invalid PHOTOEDIT_MATTE: %q (want exec, http or none)", c.Matte)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.MatteTimeout < 0 {
		return fmt.Errorf("matte timeout must be >= 0 (got %s)", c.MatteTimeout)
	}
	if c.Matte == MatteHTTP && strings.TrimSpace(c.RembgURL) == "" {
		return fmt.Errorf("http matte backend needs PHOTOEDIT_REMBG_URL")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
