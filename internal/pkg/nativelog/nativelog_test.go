package nativelog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriterRollsDaily(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "site")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return day1 }
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.now = func() time.Time { return day1.Add(2 * time.Minute) }
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(dir, "site-2026-03-01.log"))
	if err != nil || string(first) != "first\n" {
		t.Fatalf("day one file = %q, %v", first, err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "site-2026-03-02.log"))
	if err != nil || string(second) != "second\n" {
		t.Fatalf("day two file = %q, %v", second, err)
	}
}

func TestLoggerTeesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "app")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	var console bytes.Buffer
	logger := newLogger(&console, w, false, false)
	logger.Info("hello from test")
	logger.Debug("hidden")
	_ = logger.Sync()

	if !strings.Contains(console.String(), "hello from test") || strings.Contains(console.String(), "hidden") {
		t.Fatalf("console output = %q", console.String())
	}
	content, err := os.ReadFile(filepath.Join(dir, Filename("app", time.Now())))
	if err != nil || !strings.Contains(string(content), "hello from test") {
		t.Fatalf("log file = %q, %v", content, err)
	}
}
