package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type ReportConfig struct {
	Department  string `json:"department"`
	Government  string `json:"government"`
	CoverTitle  string `json:"cover_title"`
	Orientation string `json:"orientation"` // default layout: "portrait" or "landscape"
	ChartWidth  int    `json:"chart_width"`
	ChartHeight int    `json:"chart_height"`
}

type Config struct {
	Server struct {
		Host    string `json:"host"`
		Port    int    `json:"port"`
		Subpath string `json:"subpath"`
	} `json:"server"`
	Session struct {
		TTLMinutes int `json:"ttl_minutes"`
	} `json:"session"`
	Source struct {
		FetchTimeoutSeconds int `json:"fetch_timeout_seconds"`
	} `json:"source"`
	Report ReportConfig `json:"report"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return cfg, cfgErr
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 120
	}
	if c.Source.FetchTimeoutSeconds == 0 {
		c.Source.FetchTimeoutSeconds = 30
	}
	if c.Report.Department == "" {
		c.Report.Department = "MEPB"
	}
	if c.Report.CoverTitle == "" {
		c.Report.CoverTitle = "Performance Management Report"
	}
	if c.Report.Orientation == "" {
		c.Report.Orientation = "portrait"
	}
	if c.Report.ChartWidth == 0 {
		c.Report.ChartWidth = 900
	}
	if c.Report.ChartHeight == 0 {
		c.Report.ChartHeight = 450
	}
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
