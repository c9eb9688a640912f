package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "debgems")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(xdg, "debgems") {
		t.Errorf("cacheDir() = %q, want it under %q", dir, xdg)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.execute("cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != env.cacheDir {
		t.Errorf("cache path = %q, want %q", out, env.cacheDir)
	}

	for _, name := range []string{"a.json", "b.json"} {
		if err := os.WriteFile(filepath.Join(env.cacheDir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.execute("cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ := os.ReadDir(env.cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}
