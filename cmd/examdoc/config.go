package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the examdoc command configuration.
type Config struct {
	Title                   string `yaml:"title"`
	TimeLimit               int    `yaml:"time_limit"`
	IncludeTrueFalseAnswers bool   `yaml:"include_true_false_answers"`
	LogLevel                string `yaml:"log_level"`

	Upload  UploadConfig  `yaml:"upload"`
	Sheet   SheetConfig   `yaml:"sheet"`
	Store   StoreConfig   `yaml:"store"`
	Preview PreviewConfig `yaml:"preview"`
}

// UploadConfig configures the image upload endpoint. Uploads are skipped
// when URL is empty.
type UploadConfig struct {
	URL            string `yaml:"url"`
	Action         string `yaml:"action"`
	Concurrency    int    `yaml:"concurrency"`
	Retries        int    `yaml:"retries"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SheetConfig sets the constant columns of generated sheet rows.
type SheetConfig struct {
	Level         string `yaml:"level"`
	Topic         string `yaml:"topic"`
	Grade         int    `yaml:"grade"`
	QuizLevel     int    `yaml:"quiz_level"`
	DefaultChoice string `yaml:"default_choice"`
}

// StoreConfig locates the import database.
type StoreConfig struct {
	DBPath string `yaml:"db_path"`
}

// PreviewConfig configures HTML previews.
type PreviewConfig struct {
	RemoteURL string `yaml:"remote_url"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		TimeLimit: 90,
		LogLevel:  "info",
		Upload: UploadConfig{
			Action:         "uploadImage",
			Concurrency:    4,
			Retries:        2,
			TimeoutSeconds: 30,
		},
		Sheet: SheetConfig{
			Level:         "Thông hiểu",
			Grade:         12,
			QuizLevel:     1,
			DefaultChoice: "A",
		},
		Store: StoreConfig{DBPath: "examdoc.db"},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if c.TimeLimit <= 0 {
		return fmt.Errorf("time_limit must be > 0")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Upload.URL != "" && !strings.HasPrefix(c.Upload.URL, "http://") && !strings.HasPrefix(c.Upload.URL, "https://") {
		return fmt.Errorf("upload.url must be an http(s) URL")
	}
	if c.Upload.Concurrency <= 0 {
		return fmt.Errorf("upload.concurrency must be > 0")
	}
	if c.Upload.Retries < 0 {
		return fmt.Errorf("upload.retries must be >= 0")
	}
	if c.Upload.TimeoutSeconds <= 0 {
		return fmt.Errorf("upload.timeout_seconds must be > 0")
	}
	switch c.Sheet.DefaultChoice {
	case "A", "B", "C", "D", "":
	default:
		return fmt.Errorf("sheet.default_choice must be A, B, C, D or empty")
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// UploadTimeout returns the per-request upload timeout.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Upload.TimeoutSeconds) * time.Second
}
