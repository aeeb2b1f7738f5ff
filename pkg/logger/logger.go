// Package logger manages structured JSON logging with size-based rotation
// and an async write queue.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	fiblog "github.com/gofiber/fiber/v2/middleware/logger"
)

type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// LogEntry represents a structured log entry in JSON.
type LogEntry struct {
	TimeStamp string            `json:"timestamp"`
	Level     string            `json:"level"`
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Message   string            `json:"message"`
	Path      string            `json:"path,omitempty"`
	Method    string            `json:"method,omitempty"`
	Status    int               `json:"status,omitempty"`
	Latency   string            `json:"latency,omitempty"`
	Error     string            `json:"error,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// Logger manages structured logging with rotation and color.
type Logger struct {
	Mu         sync.Mutex
	Format     string
	TimeFormat string
	OutputDir  string
	MaxSizeMB  int
	MaxAgeDays int
	File       *os.File
	Log        *log.Logger
	FiberLog   fiber.Handler
	Queue      chan LogEntry
	Quit       chan struct{}
	done       sync.WaitGroup
	closeOnce  sync.Once
}

// LoggerOption defines a function to configure the logger.
type LoggerOption func(*Logger)

func NewLogger(ctx context.Context, opts ...LoggerOption) (*Logger, error) {
	l := &Logger{
		Format:     "[${time}] ${status} - ${method} ${path} ${latency}\n",
		TimeFormat: time.RFC3339,
		OutputDir:  "./logs",
		MaxSizeMB:  10,
		MaxAgeDays: 7,
		Queue:      make(chan LogEntry, 1000),
		Quit:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	if err := os.MkdirAll(l.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := OpenLogFile(l.OutputDir)
	if err != nil {
		return nil, err
	}

	l.File = file
	l.Log = log.New(file, "", 0)
	l.FiberLog = fiblog.New(fiblog.Config{
		Format:     l.Format,
		TimeFormat: l.TimeFormat,
		Output:     file,
	})

	l.done.Add(1)
	go l.Worker()

	if err := l.CleanupOldLogs(ctx); err != nil {
		l.WriteEntry(LogEntry{
			TimeStamp: time.Now().Format(l.TimeFormat),
			Level:     string(LevelWarn),
			Message:   fmt.Sprintf("log cleanup failed: %v", err),
		})
	}

	return l, nil
}

// OpenLogFile opens a new log file stamped with the current time.
func OpenLogFile(dir string) (*os.File, error) {
	filename := filepath.Join(dir, fmt.Sprintf("arvue-%s.log", time.Now().Format("2006-01-02-15-04-05")))
	return os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Rotate checks file size and opens a new log file if necessary.
func (l *Logger) Rotate() error {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	info, err := l.File.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if info.Size() >= int64(l.MaxSizeMB)*1024*1024 {
		l.File.Close()
		newFile, err := OpenLogFile(l.OutputDir)
		if err != nil {
			return err
		}
		l.File = newFile
		l.Log.SetOutput(newFile)
		l.FiberLog = fiblog.New(fiblog.Config{
			Format:     l.Format,
			TimeFormat: l.TimeFormat,
			Output:     newFile,
		})
	}
	return nil
}

// WriteEntry writes a structured JSON log entry with a colored stdout mirror.
func (l *Logger) WriteEntry(entry LogEntry) error {
	if err := l.Rotate(); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	l.Mu.Lock()
	defer l.Mu.Unlock()

	var colorPrefix string
	switch entry.Level {
	case string(LevelDebug):
		colorPrefix = "\033[36m"
	case string(LevelInfo):
		colorPrefix = "\033[32m"
	case string(LevelWarn):
		colorPrefix = "\033[33m"
	case string(LevelError):
		colorPrefix = "\033[31m"
	default:
		colorPrefix = "\033[0m"
	}

	l.Log.Output(2, string(data))
	fmt.Fprintf(os.Stdout, "%s%s\033[0m\n", colorPrefix, string(data))

	return nil
}

// Worker processes the async logging queue.
func (l *Logger) Worker() {
	defer l.done.Done()
	for {
		select {
		case entry := <-l.Queue:
			l.WriteEntry(entry)
		case <-l.Quit:
			for len(l.Queue) > 0 {
				l.WriteEntry(<-l.Queue)
			}
			return
		}
	}
}

// CleanupOldLogs removes log files older than MaxAgeDays.
func (l *Logger) CleanupOldLogs(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(l.OutputDir, "arvue-*.log"))
	if err != nil {
		return nil
	}

	now := time.Now()
	for _, file := range files {
		select {
		case <-ctx.Done():
			return fmt.Errorf("log cleanup canceled: %w", ctx.Err())
		default:
			info, err := os.Stat(file)
			if err != nil {
				continue
			}
			if now.Sub(info.ModTime()).Hours()/24 > float64(l.MaxAgeDays) {
				if err := os.Remove(file); err != nil {
					return fmt.Errorf("failed to remove old log file %s: %w", file, err)
				}
			}
		}
	}
	return nil
}

// Middleware returns the Fiber access-log middleware.
func (l *Logger) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return l.FiberLog(c)
	}
}

// SetupRoutesContext adds request ID and user ID to the context.
func SetupRoutesContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	reqID := c.Get(fiber.HeaderXRequestID)
	if reqID == "" {
		reqID = fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	ctx = context.WithValue(ctx, requestIDKey, reqID)

	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}

	return ctx
}

// SetupLogger initializes the logger and adds it to Fiber locals.
func SetupLogger(l *Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("logger", l)
		c.SetUserContext(SetupRoutesContext(c))
		return c.Next()
	}
}

// Close shuts down the logger gracefully, draining the queue first.
// Safe to call more than once.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		close(l.Quit)
		l.done.Wait()
		l.Mu.Lock()
		l.File.Close()
		l.Mu.Unlock()
	})
}
