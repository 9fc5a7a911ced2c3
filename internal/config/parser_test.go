package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
profiles:
  container-key:
    hash: sha256
    iterations: 2048
    key_length: 32
    purpose: key
  container-mac:
    hash: sha1
    iterations: 1000
    key_length: 20
    purpose: mac
    salt_length: 16
tool:
  log_level: debug
`)

	cfg, err := NewParser(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(cfg.Profiles))
	}

	key, err := cfg.Profile("container-key")
	if err != nil {
		t.Fatalf("Profile lookup failed: %v", err)
	}
	if key.Name != "container-key" {
		t.Errorf("profile name not defaulted from map key: %q", key.Name)
	}
	if key.SaltLength != 8 {
		t.Errorf("salt_length not defaulted: got %d, want 8", key.SaltLength)
	}

	mac, _ := cfg.Profile("container-mac")
	if mac.SaltLength != 16 {
		t.Errorf("explicit salt_length overridden: got %d, want 16", mac.SaltLength)
	}

	if cfg.Tool.LogLevel != "debug" {
		t.Errorf("log level: got %q, want debug", cfg.Tool.LogLevel)
	}
}

func TestLoadAppliesProfileDefaults(t *testing.T) {
	path := writeConfig(t, `
profiles:
  minimal: {}
`)

	cfg, err := NewParser(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p, err := cfg.Profile("minimal")
	if err != nil {
		t.Fatalf("Profile lookup failed: %v", err)
	}
	if p.Hash != "sha256" || p.Iterations != 2048 || p.KeyLength != 32 || p.Purpose != "key" {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if cfg.Tool.LogLevel != "info" {
		t.Errorf("log level not defaulted: got %q", cfg.Tool.LogLevel)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"no profiles", `profiles: {}`, "at least one profile"},
		{"bad hash", `
profiles:
  p:
    hash: sha3-512
`, "unsupported hash"},
		{"bad purpose", `
profiles:
  p:
    purpose: hmac
`, "invalid purpose"},
		{"negative iterations", `
profiles:
  p:
    iterations: -1
`, "iterations must be at least 1"},
		{"negative key length", `
profiles:
  p:
    key_length: -8
`, "key_length must be at least 1"},
		{"bad log level", `
profiles:
  p: {}
tool:
  log_level: loud
`, "invalid log level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := NewParser(path).Load()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "profiles: [not a map")
	_, err := NewParser(path).Load()
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
