package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestJSONWritesAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("opened raster", "path", "scene.dat")

	out := buf.String()
	if !strings.Contains(out, `"msg":"opened raster"`) {
		t.Fatalf("missing message: %s", out)
	}
	if !strings.Contains(out, `"path":"scene.dat"`) {
		t.Fatalf("missing attr: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn output, got: %s", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	t.Parallel()
	log := Nop()
	log.Error("nothing")
	if log.With("k", "v").WithGroup("g") == nil {
		t.Fatal("derived Nop logger is nil")
	}
}

func TestWithAndGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("component", "catalog").WithGroup("raster")
	log.Info("loaded", "bands", 3)

	out := buf.String()
	if !strings.Contains(out, `"component":"catalog"`) {
		t.Fatalf("missing With attr: %s", out)
	}
	if !strings.Contains(out, `"raster":{"bands":3}`) {
		t.Fatalf("missing grouped attr: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), Text(&buf, slog.LevelInfo))
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", "pretty", "text", "JSON"} {
		var buf bytes.Buffer
		log, err := Build(&buf, format, "debug")
		if err != nil {
			t.Fatalf("Build(%q): %v", format, err)
		}
		log.Debug("built")
		if !strings.Contains(buf.String(), "built") {
			t.Fatalf("Build(%q) logger wrote %q", format, buf.String())
		}
	}

	if _, err := Build(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := Build(&bytes.Buffer{}, "json", "chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func newPlain(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(NewPrettyHandler(buf, &PrettyOptions{Level: level, NoColor: true}))
}

func TestPrettyLine(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	newPlain(&buf, slog.LevelInfo).Info("opened raster", "path", "a b.dat", "bands", 4, "took", 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"INFO  opened raster", `path="a b.dat"`, "bands=4", "took=1.5s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("NoColor output has escapes: %q", out)
	}
}

func TestPrettyGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newPlain(&buf, slog.LevelInfo).WithGroup("a").With("x", 1).WithGroup("b")
	log.Info("nested", "key", "val", slog.Group("g", "k", "v"))

	out := buf.String()
	for _, want := range []string{"a.x=1", "a.b.key=val", "a.b.g.k=v"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestPrettyEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &PrettyOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn level")
	}
	if NewPrettyHandler(&bytes.Buffer{}, nil).Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled by default")
	}
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestPrettyErrorValue(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	newPlain(&buf, slog.LevelInfo).Error("failed", "err", errors.New("bad header"))
	if !strings.Contains(buf.String(), `err="bad header"`) {
		t.Fatalf("expected quoted error, got %q", buf.String())
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"simple":      false,
		"has space":   true,
		"tab\there":   true,
		`quote"d`:     true,
		"k=v":         true,
		"":            true,
		"float32.dat": false,
	}
	for in, want := range tests {
		if got := needsQuoting(in); got != want {
			t.Errorf("needsQuoting(%q) = %v, want %v", in, got, want)
		}
	}
}
