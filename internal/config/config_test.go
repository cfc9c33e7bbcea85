package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
	if cfg.Render.Format != "svg" {
		t.Errorf("Render.Format = %q, want svg", cfg.Render.Format)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[server]
addr = ":9090"
session_ttl = "1h"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
prefix = "staging:"

[render]
format = "PNG"
scale = 2

[metrics]
enabled = false
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := Config{
		Server:  Server{Addr: ":9090", SessionTTL: time.Hour},
		Cache:   Cache{Backend: BackendRedis, RedisURL: "redis://localhost:6379/0", Prefix: "staging:"},
		Render:  Render{Format: "png", Scale: 2},
		Metrics: Metrics{Enabled: false},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse("[render]\nformat = \"dot\"\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Render.Format != "dot" {
		t.Errorf("Render.Format = %q, want dot", cfg.Render.Format)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Cache.Backend != DefaultBackend {
		t.Errorf("unset sections should keep defaults, got %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "[server\n", ""},
		{"unknown key", "[server]\nport = 1\n", "unknown key"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "cache.backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", "redis_url"},
		{"bad format", "[render]\nformat = \"pdf\"\n", "render.format"},
		{"bad scale", "[render]\nscale = 100\n", "render.scale"},
		{"empty addr", "[server]\naddr = \"\"\n", "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \"127.0.0.1:7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "nope.toml")); err == nil {
		t.Error("Load() of a missing explicit file should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a file error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "jsontree", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	for _, want := range []string{"[server]", "[cache]", `backend = "file"`, "[render]"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Encode() output missing %q:\n%s", want, buf.String())
		}
	}
}
