package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{" error ", log.ErrorLevel, false},
		{"verbose", log.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Formatter
		wantErr bool
	}{
		{"", log.TextFormatter, false},
		{"json", log.JSONFormatter, false},
		{"logfmt", log.LogfmtFormatter, false},
		{"yaml", log.TextFormatter, true},
	}
	for _, tt := range tests {
		got, err := ParseFormatter(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormatter(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "logfmt"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("task added", "index", 2)

	out := buf.String()
	for _, want := range []string{"level=debug", "prefix=taskdesk", `msg="task added"`, "index=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	buf.Reset()
	logger, err = New(&buf, Options{Level: "warn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}

	if _, err := New(&buf, Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewSession(t *testing.T) {
	base := t.TempDir()
	work := t.TempDir()

	s, err := NewSession(base, work)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := s.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	wantDir, _ := FindLogDir(base, work)
	if s.Dir != wantDir {
		t.Errorf("Dir = %q, want %q", s.Dir, wantDir)
	}
	if !strings.HasPrefix(filepath.Base(s.Dir), filepath.Base(work)) {
		t.Errorf("Dir %q should start with the project name", s.Dir)
	}
	data, err := os.ReadFile(s.LogPath)
	if err != nil || string(data) != "hello\n" {
		t.Errorf("log content = %q, %v", data, err)
	}

	latest, err := FindLatestLog(s.Dir)
	if err != nil || latest != s.LogPath {
		t.Errorf("FindLatestLog = %q, %v; want %q", latest, err, s.LogPath)
	}
}

func TestNewSessionEmptyBase(t *testing.T) {
	if _, err := NewSession("", t.TempDir()); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty base dir error, got %v", err)
	}
}

func TestFindLogDirRelativeBase(t *testing.T) {
	work := t.TempDir()
	dir, err := FindLogDir("logs", work)
	if err != nil {
		t.Fatalf("FindLogDir: %v", err)
	}
	if !strings.HasPrefix(dir, filepath.Join(work, "logs")) {
		t.Errorf("dir = %q, want under %q", dir, filepath.Join(work, "logs"))
	}
}

func TestFindLatestLog(t *testing.T) {
	dir := t.TempDir()
	if got, err := FindLatestLog(filepath.Join(dir, "missing")); got != "" || err != nil {
		t.Errorf("missing dir: got %q, %v", got, err)
	}

	old := filepath.Join(dir, "20250101-000000-1.log")
	newer := filepath.Join(dir, "20250102-000000-1.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, newer, other} {
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour))
	os.Chtimes(newer, now.Add(-time.Hour), now.Add(-time.Hour))
	os.Chtimes(other, now, now)

	got, err := FindLatestLog(dir)
	if err != nil || got != newer {
		t.Errorf("FindLatestLog = %q, %v; want %q", got, err, newer)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"my project":  "my_project",
		"a//b":        "a_b",
		"":            "project",
		"***":         "project",
		"task-desk.1": "task-desk.1",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
