package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarning
	LogError
)

var logLevelStrings = map[LogLevel]string{
	LogDebug:   "DEBUG",
	LogInfo:    "INFO",
	LogWarning: "WARN",
	LogError:   "ERROR",
}

// ParseLogLevel maps a config string to a level, defaulting to info
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogDebug
	case "warn", "warning":
		return LogWarning
	case "error":
		return LogError
	default:
		return LogInfo
	}
}

// AppLogger writes leveled messages to stdout and a daily file
type AppLogger struct {
	logger  *log.Logger
	file    *os.File
	dir     string
	day     string
	level   LogLevel
	mutex   sync.Mutex
	started time.Time
}

var (
	logInstance *AppLogger
	logMutex    sync.RWMutex
)

// InitLogger sets up the global logger. An empty dir logs to stdout only.
func InitLogger(dir string, level LogLevel) error {
	l, err := newLogger(dir, level, os.Stdout)
	if err != nil {
		return err
	}

	logMutex.Lock()
	old := logInstance
	logInstance = l
	logMutex.Unlock()

	if old != nil {
		old.Close()
	}
	l.Info("Logger initialized at level %s", logLevelStrings[level])
	return nil
}

// Logger returns the global logger, falling back to stdout at info level
func Logger() *AppLogger {
	logMutex.RLock()
	l := logInstance
	logMutex.RUnlock()
	if l != nil {
		return l
	}

	logMutex.Lock()
	defer logMutex.Unlock()
	if logInstance == nil {
		logInstance, _ = newLogger("", LogInfo, os.Stdout)
	}
	return logInstance
}

func newLogger(dir string, level LogLevel, out io.Writer) (*AppLogger, error) {
	l := &AppLogger{
		logger:  log.New(out, "", log.LstdFlags),
		dir:     dir,
		level:   level,
		started: time.Now(),
	}
	if dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}
	if err := l.openDailyFile(out); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *AppLogger) openDailyFile(out io.Writer) error {
	day := time.Now().Format("2006-01-02")
	path := filepath.Join(l.dir, fmt.Sprintf("%s-%s.log", AppName, day))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}

	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	l.day = day
	l.logger.SetOutput(io.MultiWriter(file, out))
	return nil
}

func (l *AppLogger) log(level LogLevel, format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if level < l.level {
		return
	}

	if l.file != nil && time.Now().Format("2006-01-02") != l.day {
		if err := l.openDailyFile(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate log file: %v\n", err)
		}
	}

	l.logger.Printf("[%s] %s", logLevelStrings[level], fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *AppLogger) Debug(format string, args ...interface{}) {
	l.log(LogDebug, format, args...)
}

// Info logs an info message
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.log(LogInfo, format, args...)
}

// Warning logs a warning message
func (l *AppLogger) Warning(format string, args ...interface{}) {
	l.log(LogWarning, format, args...)
}

// Error logs an error message
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.log(LogError, format, args...)
}

// Printf logs at info level so the logger can back library loggers
func (l *AppLogger) Printf(format string, args ...interface{}) {
	l.log(LogInfo, format, args...)
}

// SetLevel changes the logging level
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mutex.Lock()
	l.level = level
	l.mutex.Unlock()
	l.Info("Log level changed to %s", logLevelStrings[level])
}

// Level returns the current level name
func (l *AppLogger) Level() string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return logLevelStrings[l.level]
}

// Close closes the underlying file
func (l *AppLogger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
