package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLogger_StdoutOnlyWhenNoOutputFileConfigured(t *testing.T) {
	l, err := NewLogger(Config{Level: INFO})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.file != nil {
		t.Error("expected no file handle when OutputFile is empty")
	}
	if l.Slog() == nil {
		t.Error("expected a non-nil underlying slog.Logger")
	}
}

func TestNewLogger_CreatesLogDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "nested", "app.log")

	l, err := NewLogger(Config{Level: INFO, OutputFile: logFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("expected log file to exist: %v", err)
	}
	l.Info("hello")
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("log file missing after write: %v", err)
	}
}

func TestRotateIfNeeded_RotatesWhenOverMaxSize(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "app.log")
	if err := os.WriteFile(logFile, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &Logger{config: Config{OutputFile: logFile, MaxSize: 5, MaxBackups: 3}}
	if err := l.rotateIfNeeded(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(logFile); !os.IsNotExist(err) {
		t.Error("expected original log file to be moved aside during rotation")
	}
	if _, err := os.Stat(logFile + ".1"); err != nil {
		t.Errorf("expected rotated backup at .1: %v", err)
	}
}

func TestRotateIfNeeded_NoRotationWhenUnderMaxSize(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "app.log")
	if err := os.WriteFile(logFile, []byte("small"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &Logger{config: Config{OutputFile: logFile, MaxSize: 1024, MaxBackups: 3}}
	if err := l.rotateIfNeeded(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(logFile + ".1"); !os.IsNotExist(err) {
		t.Error("expected no backup file when under the size threshold")
	}
}

func TestToSlogLevel_MapsEveryLevel(t *testing.T) {
	l := &Logger{}
	cases := map[LogLevel]string{
		DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR", FATAL: "ERROR",
	}
	for level, want := range cases {
		if got := l.toSlogLevel(level).String(); got != want {
			t.Errorf("toSlogLevel(%v) = %s, want %s", level, got, want)
		}
	}
}

func TestDefaultConfig_JSONInProductionTextInDebug(t *testing.T) {
	prod := DefaultConfig(false)
	if !prod.JSONFormat {
		t.Error("expected JSON format in non-debug default config")
	}
	debug := DefaultConfig(true)
	if debug.JSONFormat {
		t.Error("expected text format in debug default config")
	}
	if debug.Level != DEBUG || prod.Level != INFO {
		t.Errorf("unexpected levels: debug=%v prod=%v", debug.Level, prod.Level)
	}
}

func TestProductionConfig_HasLargerRotationBudgetThanDefault(t *testing.T) {
	cfg := ProductionConfig("/var/log/app.log")
	if !cfg.JSONFormat || cfg.AddSource {
		t.Errorf("unexpected production config: %+v", cfg)
	}
	if cfg.MaxBackups != 10 {
		t.Errorf("MaxBackups = %d, want 10", cfg.MaxBackups)
	}
}

func TestLogger_WithReturnsIndependentLoggerSharingConfig(t *testing.T) {
	l, err := NewLogger(Config{Level: INFO})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child := l.With("component", "test")
	if child == l {
		t.Error("expected With to return a distinct logger instance")
	}
	if child.Slog() == l.Slog() {
		t.Error("expected the child's slog.Logger to differ from the parent's")
	}
}

func TestGlobalLoggerFunctions_NoopSafelyWithoutInitialize(t *testing.T) {
	// globalLogger is nil unless Initialize has run in this process; every
	// package-level convenience function must fall back to the bare slog
	// package functions rather than panic.
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	if IsDebugEnabled() {
		t.Error("expected debug disabled with no global logger initialized")
	}
	if path := GetLogFilePath(); path != "" {
		t.Errorf("GetLogFilePath() = %q, want empty", path)
	}
}
