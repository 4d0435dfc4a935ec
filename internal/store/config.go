package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	SourceEmbedded = "EMBEDDED"
	SourceFile     = "FILE"
	SourceRemote   = "REMOTE"

	DefaultQueryKey = "yearWorldCO2"
)

type Config struct {
	Server struct {
		Port    int  `yaml:"port" toml:"port"`
		DevMode bool `yaml:"dev_mode" toml:"dev_mode"`
	} `yaml:"server" toml:"server"`
	Data struct {
		Source             string `yaml:"source" toml:"source"`
		FilePath           string `yaml:"file_path" toml:"file_path"`
		APIURL             string `yaml:"api_url" toml:"api_url"`
		APISuffix          string `yaml:"api_suffix" toml:"api_suffix"`
		TimeoutSeconds     int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
		HTTPAttempts       int    `yaml:"http_attempts" toml:"http_attempts"`
		RateLimitPerSecond int    `yaml:"rate_limit_per_second" toml:"rate_limit_per_second"`
	} `yaml:"data" toml:"data"`
	Query struct {
		Key          string `yaml:"key" toml:"key"`
		StaleMinutes int    `yaml:"stale_minutes" toml:"stale_minutes"`
		Retry        *int   `yaml:"retry" toml:"retry"`
		RetryDelayMs int    `yaml:"retry_delay_ms" toml:"retry_delay_ms"`
		GCMinutes    int    `yaml:"gc_minutes" toml:"gc_minutes"`
	} `yaml:"query" toml:"query"`
	Chart struct {
		Width  int `yaml:"width" toml:"width"`
		Height int `yaml:"height" toml:"height"`
		Margin struct {
			Top    int `yaml:"top" toml:"top"`
			Right  int `yaml:"right" toml:"right"`
			Bottom int `yaml:"bottom" toml:"bottom"`
			Left   int `yaml:"left" toml:"left"`
		} `yaml:"margin" toml:"margin"`
		PointRadius float64 `yaml:"point_radius" toml:"point_radius"`
		StrokeWidth float64 `yaml:"stroke_width" toml:"stroke_width"`
	} `yaml:"chart" toml:"chart"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Data.Source == "" {
		c.Data.Source = SourceEmbedded
	}
	c.Data.Source = strings.ToUpper(c.Data.Source)
	if c.Data.TimeoutSeconds == 0 {
		c.Data.TimeoutSeconds = 30
	}
	if c.Data.HTTPAttempts == 0 {
		c.Data.HTTPAttempts = 1
	}

	if c.Query.Key == "" {
		c.Query.Key = DefaultQueryKey
	}
	if c.Query.StaleMinutes == 0 {
		c.Query.StaleMinutes = 5
	}
	if c.Query.Retry == nil {
		one := 1
		c.Query.Retry = &one
	}
	if c.Query.RetryDelayMs == 0 {
		c.Query.RetryDelayMs = 1000
	}
	if c.Query.GCMinutes == 0 {
		c.Query.GCMinutes = 30
	}

	if c.Chart.Width == 0 {
		c.Chart.Width = 1000
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 400
	}
	m := &c.Chart.Margin
	if m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0 {
		m.Top, m.Right, m.Bottom, m.Left = 20, 30, 30, 50
	}
	if c.Chart.PointRadius == 0 {
		c.Chart.PointRadius = 3
	}
	if c.Chart.StrokeWidth == 0 {
		c.Chart.StrokeWidth = 1.5
	}
}

// applyEnv lets the data endpoint and port be chosen without editing the file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("CO2_DATA_SOURCE"); v != "" {
		c.Data.Source = strings.ToUpper(v)
	}
	if v := os.Getenv("CO2_API_URL"); v != "" {
		c.Data.APIURL = v
	}
	if v := os.Getenv("CO2_API_SUFFIX"); v != "" {
		c.Data.APISuffix = v
	}
	if v := os.Getenv("CO2_DATA_FILE"); v != "" {
		c.Data.FilePath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT '%s': %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceEmbedded:
	case SourceFile:
		if c.Data.FilePath == "" {
			return errors.New("data.file_path is required when data.source is FILE")
		}
	case SourceRemote:
		u, err := url.Parse(c.Data.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("data.api_url must be an http(s) URL when data.source is REMOTE, got '%s'", c.Data.APIURL)
		}
	default:
		return fmt.Errorf("invalid data.source '%s': must be 'EMBEDDED', 'FILE' or 'REMOTE'", c.Data.Source)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Query.StaleMinutes < 0 {
		return fmt.Errorf("query.stale_minutes cannot be negative, got %d", c.Query.StaleMinutes)
	}
	if *c.Query.Retry < 0 {
		return fmt.Errorf("query.retry cannot be negative, got %d", *c.Query.Retry)
	}
	m := c.Chart.Margin
	if c.Chart.Width <= m.Left+m.Right || c.Chart.Height <= m.Top+m.Bottom {
		return fmt.Errorf("chart %dx%d leaves no room inside margins", c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// LoadConfig reads a YAML (or .toml) config. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, b, &c); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	c.applyDefaults()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func decode(path string, b []byte, c *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(b, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// DataURL is the remote endpoint: api_url followed by api_suffix.
func (c *Config) DataURL() string {
	return c.Data.APIURL + c.Data.APISuffix
}

func (c *Config) StaleTime() time.Duration {
	return time.Duration(c.Query.StaleMinutes) * time.Minute
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Query.RetryDelayMs) * time.Millisecond
}

func (c *Config) GCTime() time.Duration {
	return time.Duration(c.Query.GCMinutes) * time.Minute
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Data.TimeoutSeconds) * time.Second
}
