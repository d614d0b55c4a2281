package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port          string
	SiteURL       string
	DBDriver      string
	DatabaseURL   string
	SessionSecret string
	TemplatesDir  string
	GinMode       string

	LogLevel  string
	LogFormat string

	GoogleClientID     string
	GoogleClientSecret string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyTokenURL     string
	SpotifyAPIURL       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "host=localhost user=postgres password=postgres dbname=trackrate port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("session_secret", "secret_key_change_me")
	v.SetDefault("templates_dir", "./web/templates")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("spotify_token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify_api_url", "https://api.spotify.com/v1/")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"google_client_id", "google_client_secret",
		"spotify_client_id", "spotify_client_secret",
	} {
		v.SetDefault(key, "")
	}
}

// Load reads .env (if present), the optional YAML file and the environment,
// in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:                v.GetString("port"),
		SiteURL:             strings.TrimSuffix(v.GetString("site_url"), "/"),
		DBDriver:            strings.ToLower(v.GetString("db_driver")),
		DatabaseURL:         v.GetString("database_url"),
		SessionSecret:       v.GetString("session_secret"),
		TemplatesDir:        v.GetString("templates_dir"),
		GinMode:             v.GetString("gin_mode"),
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
		GoogleClientID:      v.GetString("google_client_id"),
		GoogleClientSecret:  v.GetString("google_client_secret"),
		SpotifyClientID:     v.GetString("spotify_client_id"),
		SpotifyClientSecret: v.GetString("spotify_client_secret"),
		SpotifyTokenURL:     v.GetString("spotify_token_url"),
		SpotifyAPIURL:       v.GetString("spotify_api_url"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// SpotifyEnabled reports whether catalog access and Spotify sign-in are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}
