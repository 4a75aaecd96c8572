// Package nativelog builds the process logger: a console encoder on stdout
// teed into one log file per day.
package nativelog

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
)

// Filename returns the daily log file name for now.
func Filename(prefix string, now time.Time) string {
	return prefix + "-" + now.Format("2006-01-02") + ".log"
}

// Writer appends to <dir>/<prefix>-YYYY-MM-DD.log, switching files when the
// day changes.
type Writer struct {
	mu     sync.Mutex
	dir    string
	prefix string
	day    string
	file   *os.File
	now    func() time.Time
}

// NewWriter creates dir if needed and returns a daily file writer.
func NewWriter(dir, prefix string) (*Writer, error) {
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "app"
	}
	return &Writer{dir: dir, prefix: prefix, now: time.Now}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	day := now.Format("2006-01-02")
	if w.file == nil || day != w.day {
		if w.file != nil {
			_ = w.file.Close()
		}
		path := filepath.Join(w.dir, Filename(w.prefix, now))
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
		if err != nil {
			w.file = nil
			return 0, err
		}
		w.file = file
		w.day = day
	}
	return w.file.Write(p)
}

func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// NewZapLogger creates a zap logger writing to console and to the daily log
// file in dir. Debug level is enabled when debug is true.
func NewZapLogger(dir, prefix string, debug bool) (*zap.Logger, error) {
	writer, err := NewWriter(dir, prefix)
	if err != nil {
		return nil, err
	}
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return newLogger(os.Stdout, writer, debug, color), nil
}

func newLogger(console io.Writer, file zapcore.WriteSyncer, debug, color bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	fileEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	// ANSI colors only when stdout is a terminal
	if color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(console)), level),
		zapcore.NewCore(fileEncoder, file, level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger
}
