// Package config loads voxctl configuration from a TOML file, environment
// variables, and defaults, in ascending order of precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration shared by the server and the
// device agent.
type Config struct {
	Storage  string `mapstructure:"storage"`
	DataDir  string `mapstructure:"data_dir"`
	MongoURI string `mapstructure:"mongo_uri"`

	Listen     string `mapstructure:"listen"`
	BackendURL string `mapstructure:"backend_url"`
	Secret     string `mapstructure:"secret"`

	UserID    string `mapstructure:"user_id"`
	SessionID string `mapstructure:"session_id"`

	BraveAPIKey  string `mapstructure:"brave_api_key"`
	SerperAPIKey string `mapstructure:"serper_api_key"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	PollInterval time.Duration `mapstructure:"poll_interval"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	LogJSON bool `mapstructure:"log_json"`
}

// DefaultDataDir returns the default data directory (~/.voxctl/).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".voxctl")
	}
	return filepath.Join(home, ".voxctl")
}

// Load reads configuration from file, environment variables, and defaults.
func Load(configPath string) (*Config, error) {
	// Local .env files carry API keys during development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("storage", "sqlite")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("mongo_uri", "")
	v.SetDefault("listen", ":8787")
	v.SetDefault("backend_url", "http://localhost:8787")
	v.SetDefault("secret", "")
	v.SetDefault("user_id", "default")
	v.SetDefault("session_id", "default")
	v.SetDefault("brave_api_key", "")
	v.SetDefault("serper_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("sync_interval", 2*time.Second)
	v.SetDefault("log_json", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "voxctl"))
		}
		v.AddConfigPath(DefaultDataDir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// Environment variables: VOXCTL_STORAGE, VOXCTL_BACKEND_URL, etc.
	v.SetEnvPrefix("VOXCTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configPath != "" {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
