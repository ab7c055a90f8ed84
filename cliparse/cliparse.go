package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/danielhkuo/markboard/auth"
)

type Config struct {
	Port              int           `env:"PORT" envDefault:"3318"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DatabaseType      string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	SessionSecret     string        `env:"SESSION_SECRET"`
	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	MasterKey         string        `env:"MASTER_KEY" envDefault:"CDD123"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// ParseFlags reads the environment first, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("markboard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Session signing secret (prefer env)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Admin password (prefer env)")
	fs.StringVar(&cfg.MasterKey, "master-key", cfg.MasterKey, "Key that unlocks every jury")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("session TTL must be positive")
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	if cfg.AdminPasswordHash == "" {
		if cfg.AdminPassword == "" {
			return Config{}, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH required")
		}
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return Config{}, err
		}
		cfg.AdminPasswordHash = hash
	}
	cfg.AdminPassword = ""

	return cfg, nil
}
