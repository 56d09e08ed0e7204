// Package config loads runtime settings for the streamcat client.
package config

import "time"

// Config holds runtime settings for the streamcat CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - RequestTimeout: per-request timeout applied by the HTTP transport.
//   - SessionDBPath: path of the bbolt file holding the persisted session.
//   - SessionCheckInterval: how often the session watcher re-checks expiry.
type Config struct {
	ServerBaseURL        string
	RequestTimeout       time.Duration
	SessionDBPath        string
	SessionCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.SessionDBPath = "session.db"
	c.SessionCheckInterval = 30 * time.Second
}

// Load constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
