package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the geomark server. User-facing
// search settings (API key, retry policy) live in the settings store, not
// here; this covers the process-level knobs.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The HTTP server port.
// - ProviderType: Which geocoding provider to use (yandex, nominatim, google).
// - RateLimit: Provider requests per second.
// - SettingsPath: Path of the persisted settings blob.
// - JobDelay: Fixed pause between address jobs within a run.
// - FitMargin: Padding fraction for the final fit-to-bounds request.
// - RedisAddr: Optional Redis address for the geocode cache; empty disables it.
// - DatabaseURL: Optional PostgreSQL URL for search history; empty disables it.
type Config struct {
	Env          string
	Port         int
	ProviderType string
	RateLimit    int
	SettingsPath string
	JobDelay     time.Duration
	FitMargin    float64
	RedisAddr    string
	DatabaseURL  string
}

// MustLoad loads the configuration from GEOMARK_* environment variables,
// reading a .env file first when one exists. It panics on malformed values;
// there is no point starting with a broken config.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEOMARK")
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", 8080)
	v.SetDefault("provider_type", "yandex")
	v.SetDefault("rate_limit", 5)
	v.SetDefault("settings_path", "geomark-settings.json")
	v.SetDefault("job_delay", "300ms")
	v.SetDefault("fit_margin", 0.1)
	v.SetDefault("redis_addr", "")
	v.SetDefault("database_url", "")

	jobDelay := v.GetDuration("job_delay")
	if jobDelay <= 0 {
		panic("failed to parse job delay from configuration, must be a positive duration")
	}

	return &Config{
		Env:          v.GetString("env"),
		Port:         v.GetInt("port"),
		ProviderType: v.GetString("provider_type"),
		RateLimit:    v.GetInt("rate_limit"),
		SettingsPath: v.GetString("settings_path"),
		JobDelay:     jobDelay,
		FitMargin:    v.GetFloat64("fit_margin"),
		RedisAddr:    v.GetString("redis_addr"),
		DatabaseURL:  v.GetString("database_url"),
	}
}
