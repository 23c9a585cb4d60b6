package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(LoggerConfig{Level: WARN, Console: true, ConsoleWriter: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("sensor %q has no health code", "Door1")
	l.Error("walk failed: %v", "timeout")

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARN must be dropped:\n%s", out)
	}
	if !strings.Contains(out, `[WARN] logger_test.go:`) || !strings.Contains(out, `sensor "Door1" has no health code`) {
		t.Errorf("missing warn entry:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR]") {
		t.Errorf("missing error entry:\n%s", out)
	}

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "[DEBUG]") {
		t.Errorf("SetLevel not applied: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", DEBUG, true},
		{"INFO", INFO, true},
		{" warning ", WARN, true},
		{"", WARN, true},
		{"error", ERROR, true},
		{"trace", WARN, false},
	}
	for _, c := range cases {
		got, err := ParseLogLevel(c.in)
		if (err == nil) != c.ok || got != c.want {
			t.Errorf("ParseLogLevel(%q): got %v, %v", c.in, got, err)
		}
	}
}

func TestFileSinkRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "check.log")

	l, err := New(LoggerConfig{Level: DEBUG, FilePath: path, MaxBackups: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()
	l.maxSize = 64

	l.Info("first entry is long enough to cross the rotation threshold")
	l.Info("second entry")

	backups, err := filepath.Glob(filepath.Join(dir, "logs", "check.*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup, got %v", backups)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "second entry") || strings.Contains(string(data), "first entry") {
		t.Errorf("current file should only hold the entry after rotation:\n%s", data)
	}
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	l := &Logger{filePath: filepath.Join(dir, "check.log"), maxBackups: 1}

	base := time.Now().Add(-time.Hour)
	names := []string{"check.20261019-080000.log", "check.20261019-081000.log", "check.20261019-082000.log"}
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	l.cleanOldLogs()

	left, _ := filepath.Glob(filepath.Join(dir, "check.*.log"))
	if len(left) != 1 || filepath.Base(left[0]) != names[2] {
		t.Errorf("expected only the newest backup, got %v", left)
	}
}
