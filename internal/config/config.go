// backend/internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Scraping ScrapingConfig `yaml:"scraping"`
	Storage  StorageConfig  `yaml:"storage"`
}

type AppConfig struct {
	Name  string `yaml:"name"`
	Env   string `yaml:"env"`
	Debug bool   `yaml:"debug"`
	Port  int    `yaml:"port"`
}

type ScrapingConfig struct {
	BaseURL           string `yaml:"base_url"`
	ListingPath       string `yaml:"listing_path"` // fmt template, one %d page number
	UserAgent         string `yaml:"user_agent"`
	MaxPages          int    `yaml:"max_pages"`
	MaxWorkers        int    `yaml:"max_workers"`
	MaxRetries        int    `yaml:"max_retries"`
	RequestDelayMs    int    `yaml:"request_delay_ms"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver"` // "file" or "mongo"
	FilePath string `yaml:"file_path"`
	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`
}

// RequestDelay returns the configured inter-request delay.
func (c ScrapingConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout.
func (c ScrapingConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Load reads configs/app.yaml and configs/scraping.yaml, then applies
// environment overrides (PORT, MONGO_URI, MONGO_DB_NAME, STORAGE_DRIVER).
func Load() (*Config, error) {
	cfg := Default()

	basePath := filepath.Join("configs", "app.yaml")
	if yamlFile, err := os.ReadFile(basePath); err == nil {
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, err
		}
	}

	scrapingPath := filepath.Join("configs", "scraping.yaml")
	if scrapingFile, err := os.ReadFile(scrapingPath); err == nil {
		if err := yaml.Unmarshal(scrapingFile, &cfg.Scraping); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Default returns the built-in configuration used when no YAML files are
// present; the scraping defaults mirror the origin site's politeness
// expectations (one request at a time, fixed delay, bounded depth).
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "bolagsplatsen-sys",
			Env:  "development",
			Port: 8080,
		},
		Scraping: ScrapingConfig{
			BaseURL:           "https://www.bolagsplatsen.se",
			ListingPath:       "/foretag-till-salu/alla/sida/%d",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxPages:          10,
			MaxWorkers:        1,
			MaxRetries:        3,
			RequestDelayMs:    1000,
			RequestTimeoutSec: 30,
		},
		Storage: StorageConfig{
			Driver:   "file",
			FilePath: "bolagsplatsen_listings.json",
			MongoDB:  "bolagsplatsen",
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = port
		}
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Storage.MongoURI = v
	}
	if v := os.Getenv("MONGO_DB_NAME"); v != "" {
		cfg.Storage.MongoDB = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
}
