package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Audit     AuditConfig     `koanf:"audit"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	Prompts   PromptsConfig   `koanf:"prompts"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type AuditConfig struct {
	Backend    string `koanf:"backend"` // jsonl, sqlite
	Dir        string `koanf:"dir"`
	SQLitePath string `koanf:"sqlite_path"`
}

type WorkspaceConfig struct {
	Root string `koanf:"root"`
}

type PromptsConfig struct {
	Dir string `koanf:"dir"`
}

type PipelineConfig struct {
	MaxAttempts  int    `koanf:"max_attempts"`
	ManifestFile string `koanf:"manifest_file"` // optional override of the built-in registry
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.exporter", "stdout")

	k.Set("audit.backend", "jsonl")
	k.Set("audit.dir", ".castellan/audit")
	k.Set("audit.sqlite_path", ".castellan/audit.db")
	k.Set("workspace.root", ".castellan/workspaces")
	k.Set("prompts.dir", "prompts")
	k.Set("pipeline.max_attempts", 3)

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (CASTELLAN_AUDIT_BACKEND -> audit.backend)
	if err := k.Load(env.Provider("CASTELLAN_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CASTELLAN_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
