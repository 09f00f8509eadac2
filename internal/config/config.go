package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		FeedURL string `yaml:"feed_url"`
	} `yaml:"data_source"`
	Chart struct {
		Density   int     `yaml:"density"`
		BandWidth float64 `yaml:"band_width"`
		Ratio     float64 `yaml:"ratio"`
	} `yaml:"chart"`
	Schedule struct {
		SyncCron   string `yaml:"sync_cron"`
		SwingCron  string `yaml:"swing_cron"`
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Alert struct {
		Window    time.Duration `yaml:"window"`
		Threshold float64       `yaml:"threshold"`
		Cooldown  time.Duration `yaml:"cooldown"`
		StateFile string        `yaml:"state_file"`
	} `yaml:"alert"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Timezone    string `yaml:"timezone"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	Proxy       string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// 0 is a valid ratio, so its default is set before decoding.
	cfg.Chart.Ratio = 0.8

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PGCHART_SOURCE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("PGCHART_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("PGCHART_FEED_URL"); v != "" {
		cfg.DataSource.FeedURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PGCHART_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("ALERT_THRESHOLD"); v != "" {
		var threshold float64
		if _, err := fmt.Sscanf(v, "%f", &threshold); err == nil {
			cfg.Alert.Threshold = threshold
		}
	}

	// Defaults
	if cfg.Chart.Density == 0 {
		cfg.Chart.Density = 15
	}
	if cfg.Chart.BandWidth == 0 {
		cfg.Chart.BandWidth = 3.0
	}
	if cfg.Schedule.SyncCron == "" {
		cfg.Schedule.SyncCron = "*/30 * * * * *"
	}
	if cfg.Schedule.SwingCron == "" {
		cfg.Schedule.SwingCron = "0 * * * * *"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 55 23 * * *"
	}
	if cfg.Alert.Window == 0 {
		cfg.Alert.Window = 30 * time.Minute
	}
	if cfg.Alert.Threshold == 0 {
		cfg.Alert.Threshold = 1.0
	}
	if cfg.Alert.Cooldown == 0 {
		cfg.Alert.Cooldown = 60 * time.Minute
	}
	if cfg.Alert.StateFile == "" {
		cfg.Alert.StateFile = "data/alert_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/pgchart.db"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Shanghai"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Chart.Density <= 0 {
		return fmt.Errorf("chart.density must be positive")
	}
	if c.Chart.BandWidth <= 0 {
		return fmt.Errorf("chart.band_width must be positive")
	}
	if c.Chart.Ratio < 0 || c.Chart.Ratio > 1 {
		return fmt.Errorf("chart.ratio must be within [0, 1]")
	}
	if c.Alert.Threshold <= 0 {
		return fmt.Errorf("alert.threshold must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}

// Location resolves the configured timezone used for day boundaries.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
