package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("data_dir: /srv/rasters\nlog_level: debug\nlog_format: json\noutput_type: uint16\nserver_address: 0.0.0.0:9000\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got := LoadConfig(path)
	want := Config{
		DataDir:       "/srv/rasters",
		LogLevel:      "debug",
		LogFormat:     "json",
		OutputType:    "uint16",
		ServerAddress: "0.0.0.0:9000",
	}
	if got != want {
		t.Fatalf("unexpected config: got %+v want %+v", got, want)
	}
}

func TestLoadConfigMissingOrInvalid(t *testing.T) {
	dir := t.TempDir()
	if got := LoadConfig(filepath.Join(dir, "missing.yaml")); got != (Config{}) {
		t.Fatalf("expected zero config for a missing file, got %+v", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("data_dir: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if got := LoadConfig(bad); got != (Config{}) {
		t.Fatalf("expected zero config for invalid yaml, got %+v", got)
	}
}

// runServeFlags parses args against the serve flags and applies cfg.
func runServeFlags(t *testing.T, cfg Config, args ...string) (string, string) {
	t.Helper()
	var dataDir, addr string
	cmd := &cli.Command{
		Name: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Destination: &dataDir},
			&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8080", Destination: &addr},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			applyServeConfig(c, cfg, &dataDir, &addr)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"serve"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return dataDir, addr
}

func TestApplyServeConfig(t *testing.T) {
	cfg := Config{DataDir: "/from/config", ServerAddress: "0.0.0.0:9000"}

	dir, addr := runServeFlags(t, cfg)
	if dir != "/from/config" || addr != "0.0.0.0:9000" {
		t.Fatalf("config should fill unset flags: got %q %q", dir, addr)
	}

	dir, addr = runServeFlags(t, cfg, "--data-dir", "/from/flag", "--addr", ":7000")
	if dir != "/from/flag" || addr != ":7000" {
		t.Fatalf("explicit flags should win: got %q %q", dir, addr)
	}

	dir, addr = runServeFlags(t, Config{})
	if dir != "" || addr != "127.0.0.1:8080" {
		t.Fatalf("empty config should keep defaults: got %q %q", dir, addr)
	}
}

func TestApplyConvertConfig(t *testing.T) {
	run := func(cfg Config, args ...string) string {
		var outType string
		cmd := &cli.Command{
			Name:  "convert",
			Flags: []cli.Flag{&cli.StringFlag{Name: "type", Destination: &outType}},
			Action: func(ctx context.Context, c *cli.Command) error {
				applyConvertConfig(c, cfg, &outType)
				return nil
			},
		}
		if err := cmd.Run(context.Background(), append([]string{"convert"}, args...)); err != nil {
			t.Fatalf("run: %v", err)
		}
		return outType
	}

	if got := run(Config{OutputType: "float64"}); got != "float64" {
		t.Fatalf("expected config output type, got %q", got)
	}
	if got := run(Config{OutputType: "float64"}, "--type", "int16"); got != "int16" {
		t.Fatalf("expected flag output type, got %q", got)
	}
}
