package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Valid(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_config.json"
	raw := []byte(`{
		"server": {
			"host": "localhost",
			"port": 8080,
			"subpath": "/pmr"
		},
		"session": {
			"ttl_minutes": 60
		},
		"report": {
			"department": "MED",
			"government": "Lagos State",
			"orientation": "landscape"
		}
	}`)
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Report.Department != "MED" || cfg.Report.Orientation != "landscape" {
		t.Errorf("report config not loaded: %+v", cfg.Report)
	}
	if cfg.Session.TTLMinutes != 60 {
		t.Errorf("session config not loaded: %+v", cfg.Session)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_defaults_config.json"
	raw := []byte(`{"server": {"host": "0.0.0.0"}}`)
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Report.Orientation != "portrait" {
		t.Errorf("expected default orientation portrait, got %q", cfg.Report.Orientation)
	}
	if cfg.Report.ChartWidth == 0 || cfg.Report.ChartHeight == 0 {
		t.Errorf("expected default chart dimensions, got %dx%d", cfg.Report.ChartWidth, cfg.Report.ChartHeight)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfigForTest()
	_, err := LoadConfig("no_such_config.json")
	if err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_invalid_config.json"
	raw := []byte(`{this is not json}`)
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	_, err := LoadConfig(tmp)
	if err == nil {
		t.Errorf("expected error for malformed JSON")
	}
}
