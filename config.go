package darkroom

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	SiteName        string `env:"DARKROOM_SITE_NAME" envDefault:"Studio"`
	SiteURL         string `env:"DARKROOM_SITE_URL" envDefault:"http://localhost:3000"`
	SiteDescription string `env:"DARKROOM_SITE_DESCRIPTION"`

	Addr         string `env:"DARKROOM_ADDR" envDefault:":3000"`
	DatabasePath string `env:"DARKROOM_DB_PATH" envDefault:"data/darkroom.db"`
	StaticDir    string `env:"DARKROOM_STATIC_DIR" envDefault:"public"`

	ListingCacheTTL time.Duration `env:"DARKROOM_CACHE_TTL" envDefault:"5m"`

	// UploadRate caps uploads per client IP per minute.
	UploadRate int `env:"DARKROOM_UPLOAD_RATE" envDefault:"30"`
}

// LoadConfig parses environment variables and returns a Config.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	return cfg, nil
}
