package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/f4ah6o/devserve/internal/config"
)

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "Help", args: []string{"--help"}, wantCode: 0, wantStdout: "Usage: devserve"},
		{name: "Unknown flag", args: []string{"--bogus", "x"}, wantCode: 1, wantStderr: "Syntax error at '--bogus'"},
		{name: "Bad value", args: []string{"--cors", "2"}, wantCode: 1, wantStderr: "Syntax error at '2'"},
		{name: "Missing directory", args: []string{"-d", filepath.Join(t.TempDir(), "none")}, wantCode: 1, wantStderr: "Directory does not exist"},
		{name: "Config file with unknown log level", args: []string{"--config", badLevelConfig(t)}, wantCode: 1, wantStderr: "invalid loglevel"},
		{name: "Missing config file", args: []string{"--config", filepath.Join(t.TempDir(), "x.toml")}, wantCode: 1, wantStderr: "Invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("run(%q) = %d, want %d (stderr: %s)", tt.args, code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func badLevelConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "devserve.toml")
	if err := os.WriteFile(p, []byte("loglevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunServesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	args := []string{"--address", "127.0.0.1", "--port", "0", "-d", t.TempDir(), "--maxage", "-1"}
	if code := run(ctx, args, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Serving http://127.0.0.1:") {
		t.Errorf("stdout = %q, want the startup banner", stdout.String())
	}
	if !strings.Contains(stdout.String(), "[CORS:true THREADS:true MAXAGE:-1]") {
		t.Errorf("stdout = %q, want the option summary", stdout.String())
	}
}

func TestBanner(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 9999
	got := banner(cfg, cfg.Port)
	want := "Serving http://localhost:9999/ [CORS:true THREADS:true MAXAGE:2]"
	if got != want {
		t.Errorf("banner() = %q, want %q", got, want)
	}
}
