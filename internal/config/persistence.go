// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings returns the effective configuration keyed like the config file.
func Settings() map[string]any {
	return map[string]any{
		"catalog_path":          AppConfig.CatalogPath,
		"catalog_type":          AppConfig.CatalogType,
		"catalog_db_path":       AppConfig.CatalogDBPath,
		"watch_catalog":         AppConfig.WatchCatalog,
		"fuzzy_threshold":       AppConfig.FuzzyThreshold,
		"search_cache_ttl":      AppConfig.SearchCacheTTL.String(),
		"host":                  AppConfig.Host,
		"port":                  AppConfig.Port,
		"rate_limit_per_minute": AppConfig.RateLimitPerMinute,
		"rate_limit_burst":      AppConfig.RateLimitBurst,
		"json_body_limit":       AppConfig.JSONBodyLimit,
		"backup_dir":            AppConfig.BackupDir,
		"max_backups":           AppConfig.MaxBackups,
	}
}

// MarshalSettings renders the effective configuration as YAML.
func MarshalSettings() ([]byte, error) {
	data, err := yaml.Marshal(Settings())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes the effective configuration to path so it can be
// edited and passed back with --config.
func SaveConfigToFile(path string) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	data, err := MarshalSettings()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Configuration saved to file: %s", path)
	return nil
}
