package logger

import (
	"context"
	"fmt"
	"time"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

// LogBuilder builds a log entry with a fluent interface.
type LogBuilder struct {
	Logger *Logger
	Ctx    context.Context
	Level  LogLevel
	Meta   map[string]string
	Fields []interface{}
}

// WithFormat sets the Fiber logger format.
func WithFormat(format string) LoggerOption {
	return func(l *Logger) { l.Format = format }
}

// WithTimeFormat sets the timestamp format.
func WithTimeFormat(timeformat string) LoggerOption {
	return func(l *Logger) { l.TimeFormat = timeformat }
}

// WithOutputDir sets the output directory of the log files.
func WithOutputDir(dir string) LoggerOption {
	return func(l *Logger) { l.OutputDir = dir }
}

// WithMaxFileSize sets the maximum size of a single log file.
func WithMaxFileSize(size int) LoggerOption {
	return func(l *Logger) { l.MaxSizeMB = size }
}

// WithMaxDays sets the maximum age for the log files.
func WithMaxDays(days int) LoggerOption {
	return func(l *Logger) { l.MaxAgeDays = days }
}

// Debug starts a debug-level log entry.
func (l *Logger) Debug(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelDebug}
}

// Info starts an info-level log entry.
func (l *Logger) Info(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelInfo}
}

// Warn starts a warn-level log entry.
func (l *Logger) Warn(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelWarn}
}

// Error starts an error-level log entry.
func (l *Logger) Error(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelError}
}

// WithMeta adds metadata to the log entry.
func (b *LogBuilder) WithMeta(meta map[string]string) *LogBuilder {
	b.Meta = meta
	return b
}

// WithFields appends key/value pairs to the entry metadata.
func (b *LogBuilder) WithFields(fields ...interface{}) *LogBuilder {
	b.Fields = append(b.Fields, fields...)
	return b
}

// Logs finalizes the entry and hands it to the async writer.
func (b *LogBuilder) Logs(msg string) {
	entry := LogEntry{
		TimeStamp: time.Now().Format(b.Logger.TimeFormat),
		Level:     string(b.Level),
		Message:   msg,
	}

	if b.Ctx != nil {
		if reqID, ok := b.Ctx.Value(requestIDKey).(string); ok {
			entry.RequestID = reqID
		}
		if userID, ok := b.Ctx.Value(userIDKey).(string); ok {
			entry.UserID = userID
		}
	}

	if len(b.Fields) > 0 {
		if entry.Meta == nil {
			entry.Meta = map[string]string{}
		}
		for i := 0; i+1 < len(b.Fields); i += 2 {
			key := fmt.Sprintf("%v", b.Fields[i])
			entry.Meta[key] = fmt.Sprintf("%v", b.Fields[i+1])
		}
	}
	for k, v := range b.Meta {
		if entry.Meta == nil {
			entry.Meta = map[string]string{}
		}
		entry.Meta[k] = v
	}

	select {
	case b.Logger.Queue <- entry:
	default:
		b.Logger.WriteEntry(entry)
	}
}
