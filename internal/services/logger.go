// File: internal/services/logger.go
package services

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// LoggerOptions controls where and how much the service logger writes.
type LoggerOptions struct {
	Service    string
	Level      string // debug, info, warn, error
	FilePath   string // optional rotated JSON log file
	Production bool
}

// ZapLogger adapts a zap SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
}

// NewZapLogger builds a console logger (JSON in production, human readable otherwise)
// and tees it into a lumberjack-rotated file when FilePath is set.
func NewZapLogger(opts LoggerOptions) *ZapLogger {
	level := parseLevel(opts.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	var consoleEncoder zapcore.Encoder
	if opts.Production {
		consoleEncoder = jsonEncoder
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	if opts.Service != "" {
		base = base.With(zap.String("service", opts.Service))
	}

	return &ZapLogger{sugar: base.Sugar(), base: base}
}

func (l *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// StdLogger exposes the logger as a *log.Logger for libraries that want one (gorm, net/http).
func (l *ZapLogger) StdLogger() *log.Logger {
	return zap.NewStdLog(l.base.WithOptions(zap.AddCallerSkip(-1)))
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// Environment-based logger factory
func NewLogger(service string) Logger {
	env := os.Getenv("GO_ENV")
	if env == "test" {
		return &NoOpLogger{}
	}

	return NewZapLogger(LoggerOptions{
		Service:    service,
		Level:      os.Getenv("LOG_LEVEL"),
		FilePath:   os.Getenv("LOG_FILE"),
		Production: env == "production" || strings.ToLower(os.Getenv("ENV")) == "production",
	})
}
