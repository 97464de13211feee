package main

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging functionality
type Logger struct {
	zl *zap.Logger
}

// NewLogger creates a JSON logger writing to output at the given level
func NewLogger(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(output),
		parseLogLevel(level),
	)

	return &Logger{zl: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.FatalLevel))}
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap exposes the underlying zap logger
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// WithFields returns a new log entry with the specified fields
func (l *Logger) WithFields(fields map[string]interface{}) *LogEntryBuilder {
	return &LogEntryBuilder{
		logger: l,
		fields: fields,
	}
}

// WithField returns a new log entry with a single field
func (l *Logger) WithField(key string, value interface{}) *LogEntryBuilder {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError returns a new log entry with an error field
func (l *Logger) WithError(err error) *LogEntryBuilder {
	return &LogEntryBuilder{
		logger: l,
		err:    err,
	}
}

func (l *Logger) Debug(message string) { l.log(zapcore.DebugLevel, message, nil, nil) }
func (l *Logger) Info(message string)  { l.log(zapcore.InfoLevel, message, nil, nil) }
func (l *Logger) Warn(message string)  { l.log(zapcore.WarnLevel, message, nil, nil) }
func (l *Logger) Error(message string) { l.log(zapcore.ErrorLevel, message, nil, nil) }

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string) {
	l.log(zapcore.FatalLevel, message, nil, nil)
}

func (l *Logger) log(level zapcore.Level, message string, fields map[string]interface{}, err error) {
	ce := l.zl.Check(level, message)
	if ce == nil {
		return
	}

	zf := make([]zap.Field, 0, len(fields)+1)
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	ce.Write(zf...)
}

// LogEntryBuilder helps build log entries with fields
type LogEntryBuilder struct {
	logger *Logger
	fields map[string]interface{}
	err    error
}

// WithField adds a field to the log entry
func (b *LogEntryBuilder) WithField(key string, value interface{}) *LogEntryBuilder {
	if b.fields == nil {
		b.fields = make(map[string]interface{})
	}
	b.fields[key] = value
	return b
}

// WithFields adds multiple fields to the log entry
func (b *LogEntryBuilder) WithFields(fields map[string]interface{}) *LogEntryBuilder {
	if b.fields == nil {
		b.fields = make(map[string]interface{})
	}
	for k, v := range fields {
		b.fields[k] = v
	}
	return b
}

// WithError adds an error to the log entry
func (b *LogEntryBuilder) WithError(err error) *LogEntryBuilder {
	b.err = err
	return b
}

func (b *LogEntryBuilder) Debug(message string) { b.logger.log(zapcore.DebugLevel, message, b.fields, b.err) }
func (b *LogEntryBuilder) Info(message string)  { b.logger.log(zapcore.InfoLevel, message, b.fields, b.err) }
func (b *LogEntryBuilder) Warn(message string)  { b.logger.log(zapcore.WarnLevel, message, b.fields, b.err) }
func (b *LogEntryBuilder) Error(message string) { b.logger.log(zapcore.ErrorLevel, message, b.fields, b.err) }

// Fatal logs a fatal message with fields and exits
func (b *LogEntryBuilder) Fatal(message string) {
	b.logger.log(zapcore.FatalLevel, message, b.fields, b.err)
}

// Global logger instance
var AppLogger = NewLogger("INFO", os.Stdout)

// InitializeLogger initializes the global logger
func InitializeLogger(config *Config) {
	var output io.Writer = os.Stdout

	if config.IsProduction() {
		if err := os.MkdirAll("logs", 0755); err == nil {
			if file, err := os.OpenFile("logs/app.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
				output = file
			}
		}
	}

	AppLogger = NewLogger(config.LogLevel, output)
	zap.ReplaceGlobals(AppLogger.Zap())
}
