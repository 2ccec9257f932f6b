// file: cmd/root_test.go
// version: 2.0.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/viper"

	"github.com/jdfalk/qualification-planner/internal/config"
)

func TestSplitQueries(t *testing.T) {
	got := splitQueries(" 建筑总包，市政 , ,机电")
	want := []string{"建筑总包", "市政", "机电"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := splitQueries("，,"); len(got) != 0 {
		t.Fatalf("expected no queries, got %v", got)
	}
}

func TestResolveFuzzy(t *testing.T) {
	names := []string{"建筑总包二级", "市政总包二级", "建筑装修专包二级"}

	resolved, unmatched := resolveFuzzy([]string{"建筑总包,市政总包二", "建筑总包二级"}, names, 0.3)
	if want := []string{"建筑总包二级", "市政总包二级"}; !reflect.DeepEqual(resolved, want) {
		t.Fatalf("expected %v, got %v", want, resolved)
	}
	if len(unmatched) != 0 {
		t.Fatalf("expected everything matched, got %v", unmatched)
	}

	_, unmatched = resolveFuzzy([]string{"公路总包"}, names, 0.3)
	if want := []string{"公路总包"}; !reflect.DeepEqual(unmatched, want) {
		t.Fatalf("expected %v unmatched, got %v", want, unmatched)
	}
}

func TestLoadTitleCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.json")
	if err := os.WriteFile(path, []byte(`{"结构": 1, "电气": 2}`), 0o644); err != nil {
		t.Fatalf("failed to write counts: %v", err)
	}

	counts, err := loadTitleCounts(path, map[string]int{"结构": 3})
	if err != nil {
		t.Fatalf("loadTitleCounts failed: %v", err)
	}
	if counts["结构"] != 3 || counts["电气"] != 2 {
		t.Fatalf("flags should override the file, got %v", counts)
	}

	if _, err := loadTitleCounts("", map[string]int{"结构": -1}); err == nil {
		t.Fatal("expected negative headcount to be rejected")
	}
	if _, err := loadTitleCounts(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Fatal("expected missing counts file to fail")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("资质资质", 2); got != "资质..." {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := truncateString("abc", 5); got != "abc" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestInitConfigUsesHomeConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".qualification-planner.yaml")
	if err := os.WriteFile(configPath, []byte("fuzzy_threshold: 0.42\ncatalog_path: home.json\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	origCfgFile := cfgFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
		viper.Reset()
		bindFlags()
	}()

	t.Setenv("HOME", tempDir)
	cfgFile = ""

	resetFlags(rootCmd)
	viper.Reset()
	bindFlags()
	initConfig()

	if config.AppConfig.FuzzyThreshold != 0.42 {
		t.Fatalf("expected threshold from home config, got %v", config.AppConfig.FuzzyThreshold)
	}
	if config.AppConfig.CatalogPath != "home.json" {
		t.Fatalf("expected catalog path from home config, got %q", config.AppConfig.CatalogPath)
	}
}

func TestInitConfigEnvOverride(t *testing.T) {
	origCfgFile := cfgFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
		viper.Reset()
		bindFlags()
	}()

	t.Setenv("QUALPLAN_CATALOG_TYPE", "pebble")
	t.Setenv("QUALPLAN_CATALOG_DB_PATH", "/tmp/quals.db")
	cfgFile = filepath.Join(t.TempDir(), "absent.yaml")

	resetFlags(rootCmd)
	viper.Reset()
	bindFlags()
	initConfig()

	if config.AppConfig.CatalogType != "pebble" {
		t.Fatalf("expected env catalog type, got %q", config.AppConfig.CatalogType)
	}
	if got := config.AppConfig.StoreLocation(); got != "/tmp/quals.db" {
		t.Fatalf("expected env db path, got %q", got)
	}
}
