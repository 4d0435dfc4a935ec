package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Data.Source != SourceEmbedded {
		t.Errorf("Expected source %s, got %s", SourceEmbedded, cfg.Data.Source)
	}
	if cfg.Query.Key != DefaultQueryKey {
		t.Errorf("Expected key %s, got %s", DefaultQueryKey, cfg.Query.Key)
	}
	if cfg.StaleTime() != 5*time.Minute {
		t.Errorf("Expected 5m stale time, got %v", cfg.StaleTime())
	}
	if *cfg.Query.Retry != 1 {
		t.Errorf("Expected retry 1, got %d", *cfg.Query.Retry)
	}
	if cfg.Chart.Width != 1000 || cfg.Chart.Height != 400 {
		t.Errorf("Expected 1000x400 chart, got %dx%d", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Chart.Margin.Left != 50 || cfg.Chart.Margin.Bottom != 30 {
		t.Errorf("Unexpected margin %+v", cfg.Chart.Margin)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
server:
  port: 9090
data:
  source: remote
  api_url: https://example.org/api
  api_suffix: /world.json
query:
  retry: 0
  stale_minutes: 1
chart:
  width: 800
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Data.Source != SourceRemote {
		t.Errorf("Expected source normalised to REMOTE, got %s", cfg.Data.Source)
	}
	if cfg.DataURL() != "https://example.org/api/world.json" {
		t.Errorf("Unexpected data URL %s", cfg.DataURL())
	}
	if *cfg.Query.Retry != 0 {
		t.Errorf("Expected explicit retry 0 to be kept, got %d", *cfg.Query.Retry)
	}
	if cfg.Chart.Width != 800 || cfg.Chart.Height != 400 {
		t.Errorf("Expected 800x400, got %dx%d", cfg.Chart.Width, cfg.Chart.Height)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	p := writeFile(t, "config.toml", `
[data]
source = "FILE"
file_path = "data/world_data.json"

[query]
gc_minutes = 2
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Data.Source != SourceFile || cfg.Data.FilePath != "data/world_data.json" {
		t.Errorf("Unexpected data config %+v", cfg.Data)
	}
	if cfg.GCTime() != 2*time.Minute {
		t.Errorf("Expected 2m gc time, got %v", cfg.GCTime())
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CO2_DATA_SOURCE", "remote")
	t.Setenv("CO2_API_URL", "https://env.example.org")
	t.Setenv("CO2_API_SUFFIX", "/co2")
	t.Setenv("PORT", "7070")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.DataURL() != "https://env.example.org/co2" {
		t.Errorf("Unexpected data URL %s", cfg.DataURL())
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port 7070, got %d", cfg.Server.Port)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := map[string]string{
		"source":     "data:\n  source: FTP\n",
		"file":       "data:\n  source: FILE\n",
		"remote url": "data:\n  source: REMOTE\n  api_url: ftp://x\n",
		"margins":    "chart:\n  width: 60\n",
		"retry":      "query:\n  retry: -1\n",
	}
	for name, body := range cases {
		p := writeFile(t, "config.yaml", body)
		_, err := LoadConfig(p)
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		if !strings.Contains(err.Error(), "config validation failed") {
			t.Errorf("%s: expected wrapped validation error, got %v", name, err)
		}
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	p := writeFile(t, "config.yaml", "server: [oops")
	if _, err := LoadConfig(p); err == nil {
		t.Fatal("Expected parse error")
	}
}
