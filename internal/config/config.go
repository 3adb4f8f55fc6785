package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates all configuration settings for the monitor.
type Config struct {
	// Environment indicates the running environment (e.g., "development", "production").
	Environment string `mapstructure:"environment"`
	// LogLevel sets the global logging verbosity.
	LogLevel string `mapstructure:"log_level"`
	// Server holds configuration for the status HTTP server.
	Server ServerConfig `mapstructure:"server"`
	// Database holds configuration for the signal record database.
	Database DatabaseConfig `mapstructure:"database"`
	// Redis holds configuration for the report cache.
	Redis RedisConfig `mapstructure:"redis"`
	// Telegram holds configuration for operator notifications.
	Telegram TelegramConfig `mapstructure:"telegram"`
	// Thresholds holds the alerting thresholds.
	Thresholds ThresholdConfig `mapstructure:"thresholds"`
	// ConfidenceBuckets defines the confidence score bands used for slicing.
	ConfidenceBuckets []ConfidenceBucket `mapstructure:"confidence_buckets"`
	// Monitor holds the scheduling cadences.
	Monitor MonitorConfig `mapstructure:"monitor"`
	// Source holds retry settings for record fetching.
	Source SourceConfig `mapstructure:"source"`
	// History holds retention settings for the report history.
	History HistoryConfig `mapstructure:"history"`
	// Export holds settings for CSV export.
	Export ExportConfig `mapstructure:"export"`
}

// ServerConfig defines the status HTTP server settings.
type ServerConfig struct {
	// Enabled controls whether the status API is served in run mode.
	Enabled bool `mapstructure:"enabled"`
	// Port is the TCP port the server listens on.
	Port int `mapstructure:"port"`
}

// DatabaseConfig defines the PostgreSQL connection settings for the
// signal record store.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig defines the Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelegramConfig defines settings for the Telegram notification bot.
type TelegramConfig struct {
	// BotToken is the authentication token for the Telegram bot.
	BotToken string `mapstructure:"bot_token"`
	// ChatID is the chat that receives alerts and reports.
	ChatID string `mapstructure:"chat_id"`
	// Timeout bounds a single send.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ThresholdConfig defines the alerting thresholds. Loaded once at
// startup and immutable for the life of the monitoring loop.
type ThresholdConfig struct {
	// MinSuccessRate is the success rate (%) below which the low
	// success rate alert fires.
	MinSuccessRate float64 `mapstructure:"min_success_rate"`
	// MaxLossThreshold is the total ROI (%) below which the high loss
	// alert fires. Must be negative.
	MaxLossThreshold float64 `mapstructure:"max_loss_threshold"`
	// MinSignalsForAnalysis is the minimum number of closed records a
	// slice needs before it can trigger alerts.
	MinSignalsForAnalysis int `mapstructure:"min_signals_for_analysis"`
	// ConfidenceMargin is the number of percentage points a
	// high-confidence bucket may trail the aggregate success rate
	// before the mismatch alert fires.
	ConfidenceMargin float64 `mapstructure:"confidence_margin"`
	// HighConfidenceMin marks buckets subject to the mismatch rule.
	HighConfidenceMin float64 `mapstructure:"high_confidence_min"`
	// HoldTolerance is the |ROI| (%) under which a HOLD signal counts
	// as successful.
	HoldTolerance float64 `mapstructure:"hold_tolerance"`
}

// ConfidenceBucket defines one confidence score band.
type ConfidenceBucket struct {
	Name string  `mapstructure:"name"`
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
}

// Label returns the slice key used in reports, e.g. "High (70-100%)".
func (b ConfidenceBucket) Label() string {
	return fmt.Sprintf("%s (%.0f-%.0f%%)", b.Name, b.Min*100, b.Max*100)
}

// Contains reports whether the confidence score falls in the band.
// Bands are half-open [Min, Max) except the last one, which is closed
// so a confidence of exactly 1.0 lands in the top bucket.
func (b ConfidenceBucket) Contains(confidence float64, last bool) bool {
	if confidence < b.Min {
		return false
	}
	if last {
		return confidence <= b.Max
	}
	return confidence < b.Max
}

// MonitorConfig defines the scheduling cadences.
type MonitorConfig struct {
	// CheckInterval is the cadence of periodic threshold checks.
	CheckInterval time.Duration `mapstructure:"check_interval"`
	// ReportTimes are fixed local wall-clock times ("HH:MM") at which a
	// summary report is sent regardless of thresholds.
	ReportTimes []string `mapstructure:"report_times"`
	// ReportFreshness is how old the latest report may be before a
	// scheduled report recomputes instead of reusing it.
	ReportFreshness time.Duration `mapstructure:"report_freshness"`
}

// SourceConfig defines retry behavior for record fetching.
type SourceConfig struct {
	// MaxRetries is the number of additional attempts after a failed fetch.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// Timeout bounds a single fetch.
	Timeout time.Duration `mapstructure:"timeout"`
}

// HistoryConfig defines retention for the in-process report history.
type HistoryConfig struct {
	// MaxEntries caps the number of retained reports; 0 means unbounded.
	MaxEntries int `mapstructure:"max_entries"`
	// MaxAge drops reports older than this at append time; 0 means unbounded.
	MaxAge time.Duration `mapstructure:"max_age"`
}

// ExportConfig defines settings for the CSV export sink.
type ExportConfig struct {
	// Directory is where export files are written.
	Directory string `mapstructure:"directory"`
}

// Load reads the configuration from the config file and environment
// variables, applies defaults, and validates it.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	_ = viper.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	_ = viper.BindEnv("database.password", "DATABASE_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults initializes the default configuration values in Viper.
func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.enabled", true)
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "signal_monitor")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")
	viper.SetDefault("telegram.timeout", "10s")

	viper.SetDefault("thresholds.min_success_rate", 40.0)
	viper.SetDefault("thresholds.max_loss_threshold", -20.0)
	viper.SetDefault("thresholds.min_signals_for_analysis", 5)
	viper.SetDefault("thresholds.confidence_margin", 15.0)
	viper.SetDefault("thresholds.high_confidence_min", 0.7)
	viper.SetDefault("thresholds.hold_tolerance", 1.0)

	viper.SetDefault("confidence_buckets", []map[string]interface{}{
		{"name": "Low", "min": 0.0, "max": 0.4},
		{"name": "Medium", "min": 0.4, "max": 0.7},
		{"name": "High", "min": 0.7, "max": 1.0},
	})

	viper.SetDefault("monitor.check_interval", "30m")
	viper.SetDefault("monitor.report_times", []string{"09:00", "18:00"})
	viper.SetDefault("monitor.report_freshness", "5m")

	viper.SetDefault("source.max_retries", 3)
	viper.SetDefault("source.retry_delay", "5s")
	viper.SetDefault("source.timeout", "15s")

	viper.SetDefault("history.max_entries", 0)
	viper.SetDefault("history.max_age", "0s")

	viper.SetDefault("export.directory", ".")
}

// Validate checks that the loaded configuration is sane. The process
// refuses to start with invalid thresholds rather than run with
// undefined behavior.
func Validate(config *Config) error {
	t := config.Thresholds
	if t.MinSuccessRate < 0 || t.MinSuccessRate > 100 {
		return NewValidationErrorf("thresholds.min_success_rate must be in [0,100], got %.2f", t.MinSuccessRate)
	}
	if t.MaxLossThreshold >= 0 {
		return NewValidationErrorf("thresholds.max_loss_threshold must be negative, got %.2f", t.MaxLossThreshold)
	}
	if t.MinSignalsForAnalysis < 1 {
		return NewValidationErrorf("thresholds.min_signals_for_analysis must be >= 1, got %d", t.MinSignalsForAnalysis)
	}
	if t.ConfidenceMargin <= 0 {
		return NewValidationErrorf("thresholds.confidence_margin must be positive, got %.2f", t.ConfidenceMargin)
	}
	if t.HighConfidenceMin < 0 || t.HighConfidenceMin > 1 {
		return NewValidationErrorf("thresholds.high_confidence_min must be in [0,1], got %.2f", t.HighConfidenceMin)
	}
	if t.HoldTolerance < 0 {
		return NewValidationErrorf("thresholds.hold_tolerance must be >= 0, got %.2f", t.HoldTolerance)
	}

	if len(config.ConfidenceBuckets) == 0 {
		return NewValidationErrorf("confidence_buckets must not be empty")
	}
	prev := 0.0
	for i, b := range config.ConfidenceBuckets {
		if b.Name == "" {
			return NewValidationErrorf("confidence_buckets[%d].name must not be empty", i)
		}
		if b.Min < 0 || b.Max > 1 || b.Min >= b.Max {
			return NewValidationErrorf("confidence_buckets[%d] has invalid bounds [%.2f,%.2f]", i, b.Min, b.Max)
		}
		if b.Min != prev {
			return NewValidationErrorf("confidence_buckets[%d] leaves a gap: starts at %.2f, previous ended at %.2f", i, b.Min, prev)
		}
		prev = b.Max
	}
	if prev != 1.0 {
		return NewValidationErrorf("confidence_buckets must end at 1.0, got %.2f", prev)
	}

	if config.Monitor.CheckInterval <= 0 {
		return NewValidationErrorf("monitor.check_interval must be positive, got %s", config.Monitor.CheckInterval)
	}
	if len(config.Monitor.ReportTimes) == 0 {
		return NewValidationErrorf("monitor.report_times must not be empty")
	}
	for _, rt := range config.Monitor.ReportTimes {
		if _, err := ParseDayTime(rt); err != nil {
			return NewValidationErrorf("monitor.report_times entry %q: %v", rt, err)
		}
	}

	if config.Source.MaxRetries < 0 {
		return NewValidationErrorf("source.max_retries must be >= 0, got %d", config.Source.MaxRetries)
	}

	return nil
}
