package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config maps the entire application configuration. Values come from
// ./configs/config.yaml with environment-variable overrides
// (dots replaced by underscores, e.g. SERVER_PORT, AI_API_KEY).
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"` // used to build short URLs
	} `mapstructure:"server"`

	Database struct {
		Name string `mapstructure:"name"` // SQLite database file
	} `mapstructure:"database"`

	AI struct {
		APIKey          string `mapstructure:"api_key"`
		Model           string `mapstructure:"model"`
		Endpoint        string `mapstructure:"endpoint"`
		Mode            string `mapstructure:"mode"` // ai_generated | reasoning
		Batches         int    `mapstructure:"batches"`
		OptionsPerBatch int    `mapstructure:"options_per_batch"`
	} `mapstructure:"ai"`

	Scraper struct {
		TimeoutSeconds int      `mapstructure:"timeout_seconds"`
		UserAgent      string   `mapstructure:"user_agent"`
		MirrorHosts    []string `mapstructure:"mirror_hosts"`   // status-page mirrors tried in order
		TextProxyURL   string   `mapstructure:"text_proxy_url"` // generic text-extraction proxy prefix
	} `mapstructure:"scraper"`

	Analytics struct {
		IPHashSalt        string `mapstructure:"ip_hash_salt"`
		GeoEndpoint       string `mapstructure:"geo_endpoint"`
		GeoTimeoutSeconds int    `mapstructure:"geo_timeout_seconds"`
		BufferSize        int    `mapstructure:"buffer_size"`
		WorkerCount       int    `mapstructure:"worker_count"`
	} `mapstructure:"analytics"`

	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	} `mapstructure:"auth"`

	Storage struct {
		Backend        string `mapstructure:"backend"` // local | s3
		LocalPath      string `mapstructure:"local_path"`
		MaxAvatarBytes int64  `mapstructure:"max_avatar_bytes"`
		S3             struct {
			Endpoint        string `mapstructure:"endpoint"`
			Region          string `mapstructure:"region"`
			Bucket          string `mapstructure:"bucket"`
			AccessKeyID     string `mapstructure:"access_key_id"`
			SecretAccessKey string `mapstructure:"secret_access_key"`
			UsePathStyle    bool   `mapstructure:"use_path_style"`
		} `mapstructure:"s3"`
	} `mapstructure:"storage"`

	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"monitor"`
}

// ScrapeTimeout returns the scraper timeout as a duration.
func (c *Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// GeoTimeout returns the geolocation lookup timeout as a duration.
func (c *Config) GeoTimeout() time.Duration {
	return time.Duration(c.Analytics.GeoTimeoutSeconds) * time.Second
}

// Load reads the configuration with Viper, falling back to defaults
// when no config file is present.
func Load() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "briefen_me.db")
	viper.SetDefault("ai.model", "gemini-2.0-flash-lite")
	viper.SetDefault("ai.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("ai.mode", "ai_generated")
	viper.SetDefault("ai.batches", 3)
	viper.SetDefault("ai.options_per_batch", 5)
	viper.SetDefault("scraper.timeout_seconds", 15)
	viper.SetDefault("scraper.user_agent", "Mozilla/5.0 (compatible; BriefenMe/1.0; +http://briefen.me)")
	viper.SetDefault("scraper.mirror_hosts", []string{"nitter.net", "nitter.poast.org"})
	viper.SetDefault("scraper.text_proxy_url", "https://r.jina.ai/")
	viper.SetDefault("analytics.ip_hash_salt", "default-salt")
	viper.SetDefault("analytics.geo_endpoint", "http://ip-api.com/json")
	viper.SetDefault("analytics.geo_timeout_seconds", 5)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("auth.jwt_secret", "dev-secret-change-in-production")
	viper.SetDefault("auth.token_ttl_hours", 72)
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.local_path", "./storage")
	viper.SetDefault("storage.max_avatar_bytes", 2*1024*1024)
	viper.SetDefault("monitor.interval_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, AI Model=%s, Workers=%d",
		cfg.Server.Port, cfg.Database.Name, cfg.AI.Model, cfg.Analytics.WorkerCount)

	return &cfg, nil
}
