// file: internal/config/persistence_test.go
// version: 2.0.0
// guid: 5e6f7a8b-9c0d-1e2f-3a4b-5c6d7e8f9a0b

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestSaveConfigToFileRoundTrip(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	viper.Set("catalog_path", "custom.yaml")
	viper.Set("fuzzy_threshold", 0.5)
	InitConfig()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveConfigToFile(path); err != nil {
		t.Fatalf("SaveConfigToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	var saved map[string]any
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved file is not YAML: %v", err)
	}
	if saved["catalog_path"] != "custom.yaml" {
		t.Errorf("Expected catalog_path custom.yaml, got %v", saved["catalog_path"])
	}
	if saved["search_cache_ttl"] != "30s" {
		t.Errorf("Expected search_cache_ttl 30s, got %v", saved["search_cache_ttl"])
	}

	// The written file feeds back through viper.
	resetConfigTestState()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("viper could not read saved config: %v", err)
	}
	InitConfig()
	if AppConfig.CatalogPath != "custom.yaml" || AppConfig.FuzzyThreshold != 0.5 {
		t.Errorf("Round trip lost values: %+v", AppConfig)
	}
}

func TestSaveConfigToFileEmptyPath(t *testing.T) {
	if err := SaveConfigToFile(""); err == nil {
		t.Error("expected error for empty path")
	}
}
