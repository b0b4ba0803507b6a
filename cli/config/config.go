package config

import (
	"fmt"
	"time"
)

// Config represents a pulseview.yaml configuration file.
// All values are optional and act as defaults for pulseview flags.
// CLI flags always override config values.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Source    SourceConfig    `yaml:"source"`
	Cache     CacheConfig     `yaml:"cache"`
	View      ViewConfig      `yaml:"view"`
	Companion CompanionConfig `yaml:"companion"`
	Workers   int             `yaml:"workers"`
}

// ServerConfig holds processing server defaults.
type ServerConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// SourceConfig selects where blocks come from: a live processing server
// ("http", the default) or archived runs in object storage ("s3").
type SourceConfig struct {
	Backend     string `yaml:"backend"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// CacheConfig holds persistent block-cache defaults. Backend "fs" caches
// under Directory, "redis" uses a shared Redis instance, "none" disables
// the second-level cache.
type CacheConfig struct {
	Backend   string   `yaml:"backend"`
	Directory string   `yaml:"directory"`
	RedisURL  string   `yaml:"redis_url"`
	RedisTTL  Duration `yaml:"redis_ttl"`
}

// ViewConfig holds the initial view adopted at startup.
type ViewConfig struct {
	Dataset  string   `yaml:"dataset"`
	Channels []int    `yaml:"channels"`
	Mode     string   `yaml:"mode"`
	Scale    string   `yaml:"scale"`
	Bins     int      `yaml:"bins"`
	KeV      bool     `yaml:"kev"`
	DeadTime Duration `yaml:"dead_time"`
}

// CompanionConfig names the companion viewer binary for detail views.
type CompanionConfig struct {
	Binary string `yaml:"binary"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks enum-valued fields. Zero values are valid everywhere;
// they mean "use the built-in default".
func (c *Config) Validate() error {
	switch c.Source.Backend {
	case "", "http", "s3":
	default:
		return fmt.Errorf("invalid source backend %q (want http or s3)", c.Source.Backend)
	}
	if c.Source.Backend == "s3" && c.Source.Bucket == "" {
		return fmt.Errorf("source backend s3 requires a bucket")
	}
	switch c.Cache.Backend {
	case "", "none", "fs", "redis":
	default:
		return fmt.Errorf("invalid cache backend %q (want none, fs, or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache backend redis requires redis_url")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}
