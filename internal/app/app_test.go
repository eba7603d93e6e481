package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/cinefind/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBuild_WiresServices(t *testing.T) {
	t.Setenv(config.TokenEnv, "")
	dir := t.TempDir()
	path := writeConfig(t, `
api_token = "secret"
debounce_ms = 250
log_dir = "`+filepath.Join(dir, "logs")+`"

[counter]
backend = "sqlite"
db_path = "`+filepath.Join(dir, "searches.db")+`"
`)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, err := build(Options{ConfigPath: path, PrefsPath: filepath.Join(dir, "prefs.toml")}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer svc.close()

	if svc.controller == nil || svc.debouncer == nil || svc.store == nil || svc.backend == nil {
		t.Fatalf("services not wired: %+v", svc)
	}
	if got := svc.debouncer.Delay(); got != 250*time.Millisecond {
		t.Fatalf("debounce = %v, want 250ms", got)
	}
	wantLog := filepath.Join(dir, "logs", "cinefind-2026-03-14.log")
	if svc.sink.Path != wantLog {
		t.Fatalf("log path = %q, want %q", svc.sink.Path, wantLog)
	}
	if svc.prefs.Theme != "Nightfox" {
		t.Fatalf("theme = %q, want default", svc.prefs.Theme)
	}
	if _, err := os.Stat(filepath.Join(dir, "searches.db")); err != nil {
		t.Fatalf("counter db not created: %v", err)
	}
}

func TestBuild_WarnsWithoutToken(t *testing.T) {
	t.Setenv(config.TokenEnv, "")
	dir := t.TempDir()
	path := writeConfig(t, `
log_dir = "`+dir+`"

[counter]
backend = "none"
`)

	svc, err := build(Options{ConfigPath: path, PrefsPath: filepath.Join(dir, "prefs.toml")}, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	svc.close()

	data, err := os.ReadFile(svc.sink.Path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"cinefind started", "no TMDB token configured", "cinefind shutting down"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q:\n%s", want, data)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Setenv(config.TokenEnv, "")
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	tests := []struct {
		name   string
		config string
		want   string
	}{
		{"invalid toml", "api_token = [", "load config"},
		{"log dir is a file", `log_dir = "` + blocker + `"`, "open log"},
		{"unknown backend", `log_dir = "` + dir + `"` + "\n[counter]\nbackend = \"redis\"\n", "open redis counter"},
		{"http without url", `log_dir = "` + dir + `"` + "\n[counter]\nbackend = \"http\"\n", "open http counter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.config)
			svc, err := build(Options{ConfigPath: path, PrefsPath: filepath.Join(dir, "prefs.toml")}, time.Now())
			if err == nil {
				svc.close()
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
