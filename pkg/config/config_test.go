package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Log.Level)
	}
	if cfg.Audit.Backend != "jsonl" {
		t.Errorf("expected jsonl backend, got %q", cfg.Audit.Backend)
	}
	if cfg.Pipeline.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Workspace.Root != ".castellan/workspaces" {
		t.Errorf("unexpected workspace root %q", cfg.Workspace.Root)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "castellan.yaml")
	content := `
log:
  level: debug
  format: json
audit:
  backend: sqlite
pipeline:
  max_attempts: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("file values not applied: %+v", cfg.Log)
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Audit.Backend)
	}
	if cfg.Pipeline.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Pipeline.MaxAttempts)
	}
	// Untouched keys keep their defaults.
	if cfg.Prompts.Dir != "prompts" {
		t.Errorf("default prompts dir lost: %q", cfg.Prompts.Dir)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "castellan.yaml")
	if err := os.WriteFile(path, []byte("audit:\n  backend: sqlite\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASTELLAN_AUDIT_BACKEND", "jsonl")
	t.Setenv("CASTELLAN_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Audit.Backend != "jsonl" {
		t.Errorf("env must win over file, got %q", cfg.Audit.Backend)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("env level not applied, got %q", cfg.Log.Level)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}
