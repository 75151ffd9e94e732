// Package logger holds the process-wide zap logger
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// L is the global sugared logger
	L *zap.SugaredLogger
	// Z is the global structured logger
	Z *zap.Logger
)

func init() {
	// Until Init runs, log warnings and above to stderr
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stderr), zapcore.WarnLevel)
	Z = zap.New(core)
	L = Z.Sugar()
}

// Config selects level and destination
type Config struct {
	Level      string // debug, info, warn, error
	File       string // optional log file, rotated
	MaxSize    int    // megabytes per file
	MaxBackups int
	MaxAge     int // days
	Output     io.Writer
}

// ParseLevel converts a level name to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", level)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// Init configures the global logger
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		maxSize := cfg.MaxSize
		if maxSize <= 0 {
			maxSize = 16
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		maxAge := cfg.MaxAge
		if maxAge <= 0 {
			maxAge = 7
		}

		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
			Compress:   true,
		}
		output = io.MultiWriter(output, fileWriter)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(output),
		level,
	)

	Z = zap.New(core, zap.AddCallerSkip(1))
	L = Z.Sugar()
	return nil
}

// Sync flushes buffered entries; call before exit
func Sync() {
	if Z != nil {
		_ = Z.Sync()
	}
}

// Debugf logs at debug level
func Debugf(template string, args ...interface{}) { L.Debugf(template, args...) }

// Infof logs at info level
func Infof(template string, args ...interface{}) { L.Infof(template, args...) }

// Warnf logs at warn level
func Warnf(template string, args ...interface{}) { L.Warnf(template, args...) }

// Errorf logs at error level
func Errorf(template string, args ...interface{}) { L.Errorf(template, args...) }
