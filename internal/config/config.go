package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Store
		OpenLibrary
		Tasks
		MetadataSync
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	// Store configures the remote JSON document endpoint holding the whole
	// book collection.
	Store struct {
		BaseURL string
		BinID   string
		APIKey  string
		Timeout time.Duration
	}

	// OpenLibrary configures the bibliographic search API used for
	// best-effort metadata enrichment.
	OpenLibrary struct {
		BaseURL       string
		CoversBaseURL string
		Timeout       time.Duration
		RatePerSecond int
	}

	Tasks struct {
		Enabled           bool
		DBPath            string
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	// MetadataSync configures the periodic refresh of enrichment fields for
	// books that are missing them.
	MetadataSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("jsonbin_base_url", "https://api.jsonbin.io/v3/b")
	v.SetDefault("jsonbin_bin_id", "")
	v.SetDefault("jsonbin_api_key", "")
	v.SetDefault("jsonbin_timeout", "10s")

	v.SetDefault("openlibrary_base_url", "https://openlibrary.org")
	v.SetDefault("openlibrary_covers_base_url", "https://covers.openlibrary.org")
	v.SetDefault("openlibrary_timeout", "10s")
	v.SetDefault("openlibrary_rate_per_second", 1)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", "./data/tasks.db")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("metadata_sync_enabled", false)
	v.SetDefault("metadata_sync_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Store: Store{
			BaseURL: v.GetString("JSONBIN_BASE_URL"),
			BinID:   v.GetString("JSONBIN_BIN_ID"),
			APIKey:  v.GetString("JSONBIN_API_KEY"),
			Timeout: v.GetDuration("JSONBIN_TIMEOUT"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL:       v.GetString("OPENLIBRARY_BASE_URL"),
			CoversBaseURL: v.GetString("OPENLIBRARY_COVERS_BASE_URL"),
			Timeout:       v.GetDuration("OPENLIBRARY_TIMEOUT"),
			RatePerSecond: v.GetInt("OPENLIBRARY_RATE_PER_SECOND"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DBPath:            v.GetString("TASKS_DB_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		MetadataSync: MetadataSync{
			Enabled:  v.GetBool("METADATA_SYNC_ENABLED"),
			Schedule: v.GetString("METADATA_SYNC_SCHEDULE"),
		},
	}
}
