// README: Config loader with env defaults for HTTP, DB, Redis, data sources, and tariff settings.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type SourcesConfig struct {
	Zones   string
	Matrix  string
	Presets string
}

type TariffConfig struct {
	// Overrides is a query string (base_rate=5&fuel_pct=10) applied after
	// the presets load.
	Overrides     string
	ConfidencePct float64
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// Empty disables preset persistence.
		DSN string
	}
	Redis struct {
		// Empty disables the quote mirror.
		Addr string
	}
	Sources SourcesConfig
	Tariff  TariffConfig
	Load    struct {
		Timeout time.Duration
	}
	Maps struct {
		APIKey string
	}
}

// Load reads SHIPQUOTE_* variables, after merging a .env file from the
// working directory when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("SHIPQUOTE_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("SHIPQUOTE_DB_DSN")
	cfg.Redis.Addr = os.Getenv("SHIPQUOTE_REDIS_ADDR")
	cfg.Sources.Zones = envOrDefault("SHIPQUOTE_ZONES_SOURCE", "embed://zones.geojson")
	cfg.Sources.Matrix = envOrDefault("SHIPQUOTE_MATRIX_SOURCE", "embed://matrix.json")
	cfg.Sources.Presets = envOrDefault("SHIPQUOTE_PRESETS_SOURCE", "embed://presets.json")
	cfg.Tariff.Overrides = os.Getenv("SHIPQUOTE_TARIFF_OVERRIDES")
	cfg.Tariff.ConfidencePct = envOrDefaultFloat("SHIPQUOTE_CONFIDENCE_PCT", 8.0)
	cfg.Load.Timeout = time.Duration(envOrDefaultInt("SHIPQUOTE_LOAD_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
