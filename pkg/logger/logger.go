package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/config"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger writes leveled log lines to a file. Errors are echoed to stderr.
type Logger struct {
	level LogLevel
	atom  zap.AtomicLevel
	sugar *zap.SugaredLogger
	file  *os.File
}

var defaultLogger atomic.Pointer[Logger]

// Init initializes the logger with configuration from global config
func Init() error {
	if defaultLogger.Load() != nil {
		return nil
	}

	settings := config.Get()
	level := ParseLevel(settings.Logging.Level)

	l, err := New(level, settings.Logging.LogFile, settings.Logging.Persist)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defaultLogger.Store(l)
	return nil
}

// New creates a new Logger instance. A relative logFile is placed in the
// settings directory. With persist the file is appended to, otherwise it is
// truncated.
func New(level LogLevel, logFile string, persist bool) (*Logger, error) {
	logPath := logFile
	if !filepath.IsAbs(logPath) {
		logPath = config.BuildSettingsPath(filepath.Base(logPath))
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if persist {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(logPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		level: level,
		atom:  zap.NewAtomicLevelAt(level.zapLevel()),
		file:  file,
	}
	l.build(file, true)
	return l, nil
}

func (l *Logger) build(w io.Writer, echoErrors bool) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), l.atom)
	if echoErrors {
		stderr := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zapcore.ErrorLevel)
		core = zapcore.NewTee(core, stderr)
	}
	l.sugar = zap.New(core).Sugar()
}

// SetLevel changes the minimum level at run time
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	l.atom.SetLevel(level.zapLevel())
}

// Level returns the minimum level that is written
func (l *Logger) Level() LogLevel {
	return l.level
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel converts a string level to LogLevel. Unknown values map to info.
func ParseLevel(levelStr string) LogLevel {
	switch levelStr {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Debug(format, args...)
	}
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Info(format, args...)
	}
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Warn(format, args...)
	}
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Error(format, args...)
	}
}

// Fatal logs a fatal message and exits using the default logger
func Fatal(format string, args ...interface{}) {
	l := defaultLogger.Load()
	if l == nil {
		fmt.Fprintf(os.Stderr, "[FATAL] "+format+"\n", args...)
		os.Exit(1)
	}
	l.Fatal(format, args...)
}

// ComponentLogger tags every line with the component that wrote it and
// takes alternating key/value pairs after the message.
type ComponentLogger struct {
	name string
}

// WithComponent returns a logger for one component. It resolves the default
// logger on each call, so it may be created before Init.
func WithComponent(name string) *ComponentLogger {
	return &ComponentLogger{name: name}
}

func (c *ComponentLogger) sugar() *zap.SugaredLogger {
	l := defaultLogger.Load()
	if l == nil {
		return nil
	}
	return l.sugar.Named(c.name)
}

// Debug logs a debug message with key/value context
func (c *ComponentLogger) Debug(msg string, keysAndValues ...interface{}) {
	if s := c.sugar(); s != nil {
		s.Debugw(msg, keysAndValues...)
	}
}

// Info logs an info message with key/value context
func (c *ComponentLogger) Info(msg string, keysAndValues ...interface{}) {
	if s := c.sugar(); s != nil {
		s.Infow(msg, keysAndValues...)
	}
}

// Warn logs a warning with key/value context
func (c *ComponentLogger) Warn(msg string, keysAndValues ...interface{}) {
	if s := c.sugar(); s != nil {
		s.Warnw(msg, keysAndValues...)
	}
}

// Error logs an error with key/value context
func (c *ComponentLogger) Error(msg string, keysAndValues ...interface{}) {
	if s := c.sugar(); s != nil {
		s.Errorw(msg, keysAndValues...)
	}
}

// SetOutput redirects the default logger to w (useful for testing). If no
// logger is initialized yet, a debug-level logger writing to w is installed.
func SetOutput(w io.Writer) {
	l := defaultLogger.Load()
	if l == nil {
		l = &Logger{level: LevelDebug, atom: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
	} else {
		l = &Logger{level: l.level, atom: l.atom, file: l.file}
	}
	l.build(w, false)
	defaultLogger.Store(l)
}

// Close closes the default logger and uninstalls it
func Close() error {
	l := defaultLogger.Swap(nil)
	if l != nil {
		return l.Close()
	}
	return nil
}
