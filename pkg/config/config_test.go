package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"irpfgen/pkg/assets"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.URLTemplate != assets.DefaultTemplate {
		t.Errorf("URLTemplate = %q", cfg.URLTemplate)
	}
	if cfg.UserAgent != assets.UserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.Edition != DefaultEdition {
		t.Errorf("Edition = %d", cfg.Edition)
	}
	if cfg.DirectSources {
		t.Error("DirectSources should default to false")
	}
	if !cfg.DataChecker {
		t.Error("DataChecker should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
url_template = "http://mirror.test/{edition}/{path}"
edition = 2022
jobs = 4
direct_sources = true
data_checker = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.URLTemplate != "http://mirror.test/{edition}/{path}" {
		t.Errorf("URLTemplate = %q", cfg.URLTemplate)
	}
	if cfg.Edition != 2022 {
		t.Errorf("Edition = %d", cfg.Edition)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d", cfg.Jobs)
	}
	if !cfg.DirectSources || cfg.DataChecker {
		t.Errorf("bool overrides not applied: %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.UserAgent != assets.UserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `jobs = 2`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Jobs != 2 {
		t.Errorf("Jobs = %d", cfg.Jobs)
	}
	if cfg.Edition != DefaultEdition || !cfg.DataChecker {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, `jobs = [`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
