package cli

import (
	"io"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.Config.Cache.Dir = "/tmp/stratum-cache"
		dir, err := c.cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if dir != "/tmp/stratum-cache" {
			t.Errorf("cacheDir() = %q, want configured dir", dir)
		}
	})

	t.Run("default", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)
		c := New(io.Discard, LogInfo)
		dir, err := c.cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join(xdg, appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}
