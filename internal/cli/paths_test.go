package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/internal/config"
	"github.com/matzehuels/jsontree/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestNewCacheBackends(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend string
		noCache bool
		want    string
	}{
		{"file", config.BackendFile, false, "*cache.FileCache"},
		{"none", config.BackendNone, false, "cache.NullCache"},
		{"no-cache flag wins", config.BackendFile, true, "cache.NullCache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, log.InfoLevel)
			c.Config.Cache.Backend = tt.backend
			c.Config.Cache.Dir = filepath.Join(dir, tt.name)

			got, err := c.newCache(context.Background(), tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			switch got.(type) {
			case *cache.FileCache:
				if tt.want != "*cache.FileCache" {
					t.Errorf("newCache() = FileCache, want %s", tt.want)
				}
			case cache.NullCache:
				if tt.want != "cache.NullCache" {
					t.Errorf("newCache() = NullCache, want %s", tt.want)
				}
			default:
				t.Errorf("newCache() = %T, want %s", got, tt.want)
			}
		})
	}
}

func TestNewCacheRedisUnreachable(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.Config.Cache.Backend = config.BackendRedis
	c.Config.Cache.RedisURL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.newCache(ctx, false); err == nil {
		t.Error("newCache() should fail when redis is unreachable")
	}
}

func TestNewRunnerKeyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "doc:abc"},
		{"staging:", "staging:doc:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := New(io.Discard, log.InfoLevel)
			c.Config.Cache.Prefix = tt.prefix

			r, err := c.newRunner(context.Background(), true)
			if err != nil {
				t.Fatalf("newRunner() error: %v", err)
			}
			if got := r.Keyer.TreeKey("abc"); got != tt.want {
				t.Errorf("TreeKey() = %q, want %q", got, tt.want)
			}
			art := r.Keyer.ArtifactKey("abc", cache.ArtifactKeyOpts{Format: "svg"})
			if !strings.HasPrefix(art, tt.prefix+"artifact:") {
				t.Errorf("ArtifactKey() = %q, want prefix %q", art, tt.prefix+"artifact:")
			}
		})
	}
}
