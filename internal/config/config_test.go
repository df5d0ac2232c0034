package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  poll_timeout: 20s
store:
  type: sqlite
  path: test.db
search:
  timeout: 15s
  headhunter:
    enabled: true
    per_page: 50
  linkedin:
    enabled: true
digest:
  enabled: true
  interval: 2h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.PollTimeout != 20*time.Second {
		t.Errorf("PollTimeout = %v, want 20s", cfg.Telegram.PollTimeout)
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.Path != "test.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Search.Timeout != 15*time.Second {
		t.Errorf("Search.Timeout = %v, want 15s", cfg.Search.Timeout)
	}
	if cfg.Search.HeadHunter.PerPage != 50 {
		t.Errorf("PerPage = %d, want 50", cfg.Search.HeadHunter.PerPage)
	}
	if !cfg.Search.LinkedIn.Enabled {
		t.Error("LinkedIn.Enabled = false")
	}
	if cfg.Digest.Interval != 2*time.Hour {
		t.Errorf("Digest.Interval = %v, want 2h", cfg.Digest.Interval)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
search:
  headhunter:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.Path != "jobscout.db" {
		t.Errorf("Store defaults = %+v", cfg.Store)
	}
	if cfg.Search.HeadHunter.BaseURL != "https://api.hh.ru" {
		t.Errorf("HeadHunter.BaseURL = %q", cfg.Search.HeadHunter.BaseURL)
	}
	if cfg.Search.HeadHunter.PerPage != 20 {
		t.Errorf("PerPage = %d, want 20", cfg.Search.HeadHunter.PerPage)
	}
	if cfg.Search.Timeout != 30*time.Second {
		t.Errorf("Search.Timeout = %v, want 30s", cfg.Search.Timeout)
	}
	if cfg.Digest.Enabled {
		t.Error("Digest.Enabled = true, want false by default")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("JOBSCOUT_TEST_TOKEN", "999:xyz")
	path := writeConfig(t, `
telegram:
  token: "${JOBSCOUT_TEST_TOKEN}"
search:
  linkedin:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "999:xyz" {
		t.Errorf("Token = %q, want expanded env value", cfg.Telegram.Token)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_NoProvidersEnabled(t *testing.T) {
	path := writeConfig(t, `
store:
  type: sqlite
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error when no provider is enabled")
	}
}

func TestLoad_RedisRequiresURL(t *testing.T) {
	path := writeConfig(t, `
store:
  type: redis
search:
  headhunter:
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for redis store without redis_url")
	}
}

func TestLoad_UnknownStoreType(t *testing.T) {
	path := writeConfig(t, `
store:
  type: dynamo
search:
  headhunter:
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for unknown store type")
	}
}
