package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Template store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Invoicer"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"invoicer"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		Secret string `envconfig:"AUTH_JWT_SECRET"`
		Issuer string `envconfig:"AUTH_ISSUER" default:""`
		// Token is the bearer token the TUI presents; it can also be
		// pasted on the login screen.
		Token string `envconfig:"INVOICER_TOKEN"`
	}

	Export struct {
		Dir         string        `envconfig:"EXPORT_DIR" default:"."`
		SpoolDir    string        `envconfig:"PRINT_SPOOL_DIR" default:""`
		PrintCmd    string        `envconfig:"PRINT_COMMAND" default:"lp"`
		SettleDelay time.Duration `envconfig:"PRINT_SETTLE_DELAY" default:"500ms"`
		Scale       float64       `envconfig:"RASTER_SCALE" default:"2"`
		FontCSS     string        `envconfig:"PRINT_FONT_CSS" default:""`
	}

	Templates struct {
		Store string `envconfig:"TEMPLATE_STORE" default:"postgres"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.Templates.Store = strings.ToLower(strings.TrimSpace(cfg.Templates.Store))

	switch cfg.Templates.Store {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown TEMPLATE_STORE %q", cfg.Templates.Store)
	}

	if cfg.Export.Scale <= 0 {
		return nil, fmt.Errorf("RASTER_SCALE must be positive, got %v", cfg.Export.Scale)
	}

	return &cfg, nil
}
