package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-world" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Database.DSN != "sqlite://./test.db" {
			t.Fatalf("unexpected dsn: %q", cfg.Database.DSN)
		}
		if cfg.Output != "out/worldbook.json" || cfg.Log.Level != "debug" {
			t.Fatalf("unexpected output/log: %q %q", cfg.Output, cfg.Log.Level)
		}
		if len(cfg.Sources.Paths) != 1 || cfg.Sources.Paths[0] != "lore" || cfg.Sources.Exclude[0] != "lore/drafts" {
			t.Fatalf("unexpected sources: %+v", cfg.Sources)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: postgres://localhost/worldforge\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Output != "worldbook.json" || cfg.Log.Level != "info" {
			t.Fatalf("expected defaults, got %q %q", cfg.Output, cfg.Log.Level)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ndatabase:\n  dsn: sqlite://./w.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\ndatabase:\n  dsn: sqlite://./w.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported dsn scheme", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: mysql://localhost/w\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./w.db\nlog:\n  level: loud\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Project != Default().Project {
		t.Fatalf("expected default config, got %+v", cfg)
	}

	path := writeTempConfig(t, "project: [\n")
	if _, err := LoadOrDefault(path); err == nil {
		t.Fatalf("expected parse errors to surface")
	}
}

func TestRender(t *testing.T) {
	cfg := Default()
	cfg.Project = "rendered"
	data, err := Render(cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	path := writeTempConfig(t, string(data))
	loaded, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("loading rendered config: %v", err)
	}
	if loaded.Project != "rendered" || loaded.Database.DSN != cfg.Database.DSN {
		t.Fatalf("unexpected rendered config: %+v", loaded)
	}

	cfg.Database.DSN = "redis://nope"
	if _, err := Render(cfg); err == nil {
		t.Fatalf("expected error for bad dsn")
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
