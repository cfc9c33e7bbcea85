// Package config loads jsontree settings from an optional TOML file.
//
// Values are layered: built-in defaults, then the config file, then command
// line flags (applied by the CLI after [Load] returns). The file lives at
// $XDG_CONFIG_HOME/jsontree/config.toml, or ~/.config/jsontree/config.toml
// when XDG_CONFIG_HOME is unset. A missing file is not an error.
//
// Example file:
//
//	[server]
//	addr = ":9090"
//	session_ttl = "1h"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	prefix = "staging:"
//
//	[render]
//	format = "png"
//	scale = 2
//
//	[metrics]
//	enabled = true
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/render"
	"github.com/matzehuels/jsontree/pkg/session"
)

// AppName names the config and cache directories.
const AppName = "jsontree"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults.
const (
	DefaultAddr    = ":8080"
	DefaultBackend = BackendFile
)

// Config is the full set of file-configurable settings.
type Config struct {
	Server  Server  `toml:"server"`
	Cache   Cache   `toml:"cache"`
	Render  Render  `toml:"render"`
	Metrics Metrics `toml:"metrics"`

	// Path is the file the config was read from; empty when defaults were used.
	Path string `toml:"-"`
}

// Server configures "jsontree serve".
type Server struct {
	Addr       string        `toml:"addr"`
	SessionTTL time.Duration `toml:"session_ttl"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend  string `toml:"backend"`   // file, redis or none
	Dir      string `toml:"dir"`       // file backend directory; empty uses the XDG cache dir
	RedisURL string `toml:"redis_url"` // redis backend connection URL
	Prefix   string `toml:"prefix"`    // namespace prepended to every cache key
}

// Render holds rendering defaults.
type Render struct {
	Format string  `toml:"format"`
	Scale  float64 `toml:"scale"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:       DefaultAddr,
			SessionTTL: session.DefaultTTL,
		},
		Cache: Cache{
			Backend: DefaultBackend,
		},
		Render: Render{
			Format: pipeline.DefaultFormat,
			Scale:  pipeline.DefaultScale,
		},
		Metrics: Metrics{Enabled: true},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path means
// [DefaultPath], and a missing default file yields the defaults. A missing
// file named explicitly is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults. It is Load without the file.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Default(), err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache.backend %q (must be file, redis or none)", c.Cache.Backend)
	}

	f, err := render.ParseFormat(c.Render.Format)
	if err != nil {
		return fmt.Errorf("invalid render.format: %w", err)
	}
	c.Render.Format = string(f)

	if c.Render.Scale <= 0 || c.Render.Scale > pipeline.MaxScale {
		return fmt.Errorf("render.scale must be in (0, %g]", pipeline.MaxScale)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
