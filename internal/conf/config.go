// Package conf loads and validates application settings.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/osalazarm/alertview/internal/errors"
	"github.com/spf13/viper"
)

// Database backends supported for the review and notification stores.
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// Settings holds the full application configuration.
type Settings struct {
	Server       ServerSettings       `mapstructure:"server"`
	AlertStore   AlertStoreSettings   `mapstructure:"alertstore"`
	Database     DatabaseSettings     `mapstructure:"database"`
	Dashboard    DashboardSettings    `mapstructure:"dashboard"`
	Watcher      WatcherSettings      `mapstructure:"watcher"`
	Notification NotificationDefaults `mapstructure:"notification"`
	Sentry       SentrySettings       `mapstructure:"sentry"`
	LogLevel     string               `mapstructure:"log_level"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AlertStoreSettings configures the connection to the external alert index.
type AlertStoreSettings struct {
	URL      string   `mapstructure:"url"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	Timeout  Duration `mapstructure:"timeout"`
}

// DatabaseSettings configures the local review/notification store.
type DatabaseSettings struct {
	Type string `mapstructure:"type"` // "sqlite" or "mysql"
	Path string `mapstructure:"path"` // sqlite file path
	DSN  string `mapstructure:"dsn"`  // mysql DSN
}

// DashboardSettings configures statistics caching.
type DashboardSettings struct {
	CacheTTL Duration `mapstructure:"cache_ttl"`
}

// WatcherSettings configures the automatic alert watcher.
type WatcherSettings struct {
	Enabled   bool     `mapstructure:"enabled"`
	Interval  Duration `mapstructure:"interval"`
	BatchSize int      `mapstructure:"batch_size"`
}

// NotificationDefaults seeds the notification config row on first run.
type NotificationDefaults struct {
	AlertThreshold int    `mapstructure:"alert_threshold"`
	Enabled        bool   `mapstructure:"enabled"`
	SenderName     string `mapstructure:"sender_name"`
	SenderAddress  string `mapstructure:"sender_address"`
}

// SentrySettings configures optional crash reporting.
type SentrySettings struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Load reads settings from the given config file (or the default search
// path when empty), applying ALERTVIEW_* environment overrides.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("alertview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/alertview")
	}

	v.SetEnvPrefix("alertview")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults plus env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("alertstore.url", "http://localhost:9200")
	v.SetDefault("alertstore.timeout", "10s")
	v.SetDefault("database.type", DatabaseSQLite)
	v.SetDefault("database.path", "alertview.db")
	v.SetDefault("dashboard.cache_ttl", "1m")
	v.SetDefault("watcher.enabled", false)
	v.SetDefault("watcher.interval", "1m")
	v.SetDefault("watcher.batch_size", 20)
	v.SetDefault("notification.alert_threshold", 10)
	v.SetDefault("notification.enabled", true)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("log_level", "info")
}

// Validate checks settings for values that would fail at runtime.
func (s *Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", s.Server.Port)
	}
	if s.AlertStore.URL == "" {
		return fmt.Errorf("alertstore.url is required")
	}
	switch s.Database.Type {
	case DatabaseSQLite:
		if s.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case DatabaseMySQL:
		if s.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database type %q", s.Database.Type)
	}
	if s.Dashboard.CacheTTL.Std() < time.Second {
		return fmt.Errorf("dashboard.cache_ttl must be at least 1s")
	}
	if s.Watcher.Enabled && s.Watcher.Interval.Std() < time.Second {
		return fmt.Errorf("watcher.interval must be at least 1s")
	}
	if s.Notification.AlertThreshold < 0 || s.Notification.AlertThreshold > 15 {
		return fmt.Errorf("notification.alert_threshold must be in [0,15]")
	}
	return nil
}
