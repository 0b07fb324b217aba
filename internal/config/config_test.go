package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Venv.Path != "" {
		t.Errorf("venv path = %q, want empty", cfg.Venv.Path)
	}
	if !cfg.AutoActivate() {
		t.Error("auto-activate should default to true")
	}
	if cfg.Scripts.Owner != "ThalesMMS" {
		t.Errorf("scripts owner = %q", cfg.Scripts.Owner)
	}
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[venv]
path = "/Users/me/dicom-env"
auto_activate = false

[scripts]
owner = "someone"
repo  = "scripts"

[data]
dir = "/tmp/pyrunner-data"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Venv.Path != "/Users/me/dicom-env" {
		t.Errorf("venv path = %q", cfg.Venv.Path)
	}
	if cfg.AutoActivate() {
		t.Error("auto-activate should be false")
	}
	if cfg.Scripts.Owner != "someone" || cfg.Scripts.Repo != "scripts" {
		t.Errorf("scripts = %+v", cfg.Scripts)
	}
	if got := cfg.HistoryDBPath(); got != "/tmp/pyrunner-data/history.db" {
		t.Errorf("HistoryDBPath = %q", got)
	}
}

func TestAutoActivateAbsentKeyDefaultsTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[venv]\npath = \"/x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AutoActivate() {
		t.Error("absent auto_activate key should default to true")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.SetVenvPath("/opt/envs/horos")
	cfg.SetAutoActivate(false)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Venv.Path != "/opt/envs/horos" {
		t.Errorf("venv path = %q", loaded.Venv.Path)
	}
	if loaded.AutoActivate() {
		t.Error("auto-activate should survive the round trip as false")
	}
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv(envOverride, "/custom/pyrunner.toml")
	if got := DefaultPath(); got != "/custom/pyrunner.toml" {
		t.Errorf("DefaultPath = %q", got)
	}
}

func TestTemplateConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(TemplateConfig()), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if !cfg.AutoActivate() {
		t.Error("template should enable auto-activate")
	}
}
