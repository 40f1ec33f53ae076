package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort  string
	CORSOrigins []string

	// Storage
	StoreDriver string // bolt or sqlite

	// TMDB
	TMDBAPIKey            string // optional; search and enrichment are disabled without it
	TMDBBaseURL           string
	TMDBImageBaseURL      string
	TMDBLanguage          string
	TMDBRequestsPerSecond float64
	SearchCacheTTL        time.Duration

	// Collection
	CarouselLimit          int
	EndingSoonWindow       time.Duration
	RecentlyReleasedWindow time.Duration
	InboxRetention         time.Duration

	// Paths
	ConfigDir     string
	BlocklistFile string // $CONFIG_DIR/blocklist.txt
	DatabaseFile  string // $CONFIG_DIR/zoetrope.db or zoetrope.sqlite

	// Logging
	LogLevel  string
	LogFormat string

	// Tracing
	TracingEnabled bool
}

const day = 24 * time.Hour

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("STORE_DRIVER", "bolt")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p")
	viper.SetDefault("TMDB_LANGUAGE", "zh-CN")
	viper.SetDefault("TMDB_REQUESTS_PER_SECOND", 4)
	viper.SetDefault("SEARCH_CACHE_TTL_SECONDS", 3600)
	viper.SetDefault("INBOX_RETENTION_DAYS", 7)
	viper.SetDefault("CAROUSEL_LIMIT", 10)
	viper.SetDefault("ENDING_SOON_WINDOW_DAYS", 14)
	viper.SetDefault("RECENTLY_RELEASED_WINDOW_DAYS", 7)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("TRACING_ENABLED", false)

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "zoetrope")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	driver := strings.ToLower(viper.GetString("STORE_DRIVER"))

	config := &Config{
		// Server
		ServerPort:  viper.GetString("SERVER_PORT"),
		CORSOrigins: splitList(viper.GetString("CORS_ORIGINS")),

		// Storage
		StoreDriver: driver,

		// TMDB
		TMDBAPIKey:            viper.GetString("TMDB_API_KEY"),
		TMDBBaseURL:           strings.TrimRight(viper.GetString("TMDB_BASE_URL"), "/"),
		TMDBImageBaseURL:      strings.TrimRight(viper.GetString("TMDB_IMAGE_BASE_URL"), "/"),
		TMDBLanguage:          viper.GetString("TMDB_LANGUAGE"),
		TMDBRequestsPerSecond: viper.GetFloat64("TMDB_REQUESTS_PER_SECOND"),
		SearchCacheTTL:        time.Duration(viper.GetInt("SEARCH_CACHE_TTL_SECONDS")) * time.Second,

		// Collection
		CarouselLimit:          viper.GetInt("CAROUSEL_LIMIT"),
		EndingSoonWindow:       time.Duration(viper.GetInt("ENDING_SOON_WINDOW_DAYS")) * day,
		RecentlyReleasedWindow: time.Duration(viper.GetInt("RECENTLY_RELEASED_WINDOW_DAYS")) * day,
		InboxRetention:         time.Duration(viper.GetInt("INBOX_RETENTION_DAYS")) * day,

		// Paths
		ConfigDir:     configDir,
		BlocklistFile: filepath.Join(configDir, "blocklist.txt"),
		DatabaseFile:  filepath.Join(configDir, databaseFileName(driver)),

		// Logging
		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),

		// Tracing
		TracingEnabled: viper.GetBool("TRACING_ENABLED"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks value ranges. TMDB_API_KEY is optional.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.StoreDriver != "bolt" && c.StoreDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be bolt or sqlite, got %q", c.StoreDriver))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.TMDBAPIKey != "" && c.TMDBBaseURL == "" {
		errs = append(errs, errors.New("TMDB_BASE_URL is required when TMDB_API_KEY is set"))
	}
	if c.TMDBRequestsPerSecond <= 0 {
		errs = append(errs, errors.New("TMDB_REQUESTS_PER_SECOND must be positive"))
	}
	if c.SearchCacheTTL < 0 {
		errs = append(errs, errors.New("SEARCH_CACHE_TTL_SECONDS must not be negative"))
	}
	if c.CarouselLimit < 1 || c.CarouselLimit > 20 {
		errs = append(errs, fmt.Errorf("CAROUSEL_LIMIT must be between 1 and 20, got %d", c.CarouselLimit))
	}
	if c.EndingSoonWindow < day {
		errs = append(errs, errors.New("ENDING_SOON_WINDOW_DAYS must be at least 1"))
	}
	if c.RecentlyReleasedWindow < day {
		errs = append(errs, errors.New("RECENTLY_RELEASED_WINDOW_DAYS must be at least 1"))
	}
	if c.InboxRetention < day {
		errs = append(errs, errors.New("INBOX_RETENTION_DAYS must be at least 1"))
	}

	return errors.Join(errs...)
}

// TMDBEnabled reports whether an API key was configured
func (c *Config) TMDBEnabled() bool {
	return c.TMDBAPIKey != ""
}

func databaseFileName(driver string) string {
	if driver == "sqlite" {
		return "zoetrope.sqlite"
	}
	return "zoetrope.db"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
