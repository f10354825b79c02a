package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the client needs to reach the ProcurePay API.
// There is exactly one base URL: every call site goes through this value.
type Config struct {
	// BaseURL of the ProcurePay API, without trailing slash.
	BaseURL string
	// Timeout applied to every HTTP call.
	Timeout time.Duration
	// TokenFile is where the session token is persisted between CLI runs.
	TokenFile string
}

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 15 * time.Second
)

// Load reads configs/.env (if present) and the environment.
func Load() Config {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load("configs/.env")

	cfg := Config{
		BaseURL:   defaultBaseURL,
		Timeout:   defaultTimeout,
		TokenFile: defaultTokenFile(),
	}

	if v := os.Getenv("PROCUREPAY_API_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("PROCUREPAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("PROCUREPAY_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}

	return cfg
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".procurepay_token"
	}
	return filepath.Join(home, ".procurepay", "token")
}
