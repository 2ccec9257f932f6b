// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	CatalogPath    string  // JSON or YAML catalog file
	CatalogType    string  // "file" (default) or "pebble"
	CatalogDBPath  string  // PebbleDB directory when CatalogType is "pebble"
	WatchCatalog   bool    // reload the catalog file when it changes
	FuzzyThreshold float64 // edit-distance similarity cutoff for search
	SearchCacheTTL time.Duration

	Host string
	Port int

	RateLimitPerMinute int
	RateLimitBurst     int
	JSONBodyLimit      int64

	BackupDir  string // catalog snapshots taken before imports
	MaxBackups int    // 0 keeps every snapshot
}

var AppConfig Config

// Defaults
const (
	DefaultCatalogPath        = "qualification_data.json"
	DefaultCatalogType        = "file"
	DefaultCatalogDBPath      = "qualification_data.db"
	DefaultFuzzyThreshold     = 0.3
	DefaultSearchCacheTTL     = 30 * time.Second
	DefaultPort               = 5006
	DefaultRateLimitPerMinute = 600
	DefaultRateLimitBurst     = 60
	DefaultJSONBodyLimit      = 1 << 20
	DefaultBackupDir          = "catalog_backups"
	DefaultMaxBackups         = 10
)

// InitConfig initializes the application configuration
func InitConfig() {
	viper.SetDefault("catalog_path", DefaultCatalogPath)
	viper.SetDefault("catalog_type", DefaultCatalogType)
	viper.SetDefault("catalog_db_path", DefaultCatalogDBPath)
	viper.SetDefault("watch_catalog", true)
	viper.SetDefault("fuzzy_threshold", DefaultFuzzyThreshold)
	viper.SetDefault("search_cache_ttl", DefaultSearchCacheTTL)
	viper.SetDefault("host", "")
	viper.SetDefault("port", DefaultPort)
	viper.SetDefault("rate_limit_per_minute", DefaultRateLimitPerMinute)
	viper.SetDefault("rate_limit_burst", DefaultRateLimitBurst)
	viper.SetDefault("json_body_limit", DefaultJSONBodyLimit)
	viper.SetDefault("backup_dir", DefaultBackupDir)
	viper.SetDefault("max_backups", DefaultMaxBackups)

	AppConfig = Config{
		CatalogPath:        viper.GetString("catalog_path"),
		CatalogType:        viper.GetString("catalog_type"),
		CatalogDBPath:      viper.GetString("catalog_db_path"),
		WatchCatalog:       viper.GetBool("watch_catalog"),
		FuzzyThreshold:     viper.GetFloat64("fuzzy_threshold"),
		SearchCacheTTL:     viper.GetDuration("search_cache_ttl"),
		Host:               viper.GetString("host"),
		Port:               viper.GetInt("port"),
		RateLimitPerMinute: viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("rate_limit_burst"),
		JSONBodyLimit:      viper.GetInt64("json_body_limit"),
		BackupDir:          viper.GetString("backup_dir"),
		MaxBackups:         viper.GetInt("max_backups"),
	}

	if AppConfig.CatalogType == "" {
		AppConfig.CatalogType = DefaultCatalogType
	}
}

// StoreLocation returns the path the configured catalog store opens.
func (c Config) StoreLocation() string {
	if c.CatalogType == "pebble" {
		return c.CatalogDBPath
	}
	return c.CatalogPath
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch c.CatalogType {
	case "file", "pebble":
	default:
		return fmt.Errorf("catalog_type must be file or pebble, got %q", c.CatalogType)
	}
	if c.StoreLocation() == "" {
		return fmt.Errorf("catalog location is empty for catalog_type %q", c.CatalogType)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be within [0, 1], got %v", c.FuzzyThreshold)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.SearchCacheTTL < 0 {
		return fmt.Errorf("search_cache_ttl must not be negative")
	}
	if c.RateLimitPerMinute < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.MaxBackups < 0 {
		return fmt.Errorf("max_backups must not be negative")
	}
	return nil
}
