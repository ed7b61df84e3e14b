// Package logger provides a comprehensive logging system with multiple outputs.
// It supports console logging with colors, file logging, and Discord webhook logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

const (
	fieldLevel  = "severity"
	fieldPrefix = "prefix"

	timeFormat = "2006-01-02 15:04:05"
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelSuccess:
		return "SUCCESS"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Color returns the console color for the log level
func (l LogLevel) Color() *color.Color {
	switch l {
	case LevelCritical:
		return color.New(color.FgRed, color.Bold)
	case LevelError:
		return color.New(color.FgRed)
	case LevelWarn:
		return color.New(color.FgYellow)
	case LevelSuccess:
		return color.New(color.FgGreen)
	case LevelInfo:
		return color.New(color.FgCyan)
	case LevelDebug:
		return color.New(color.FgMagenta)
	case LevelSystem:
		return color.New(color.FgBlue)
	default:
		return color.New(color.Reset)
	}
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000 // Red
	case LevelWarn:
		return 0xFFFF00 // Yellow
	case LevelSuccess:
		return 0x00FF00 // Green
	case LevelInfo:
		return 0x0000FF // Blue
	case LevelDebug:
		return 0x800080 // Purple
	case LevelSystem:
		return 0x808080 // Grey
	default:
		return 0xFFFFFF // White
	}
}

// logrusLevel maps a level onto logrus. Critical stays at ErrorLevel so logrus never panics or exits.
func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelCritical, LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is the main logging structure
type Logger struct {
	logrus *logrus.Logger
	files  *fileHook
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(logsWebhook string) *Logger {
	once.Do(func() {
		logger = NewLogger(logsWebhook)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	// Use sync.Once to ensure thread-safe initialization if Init wasn't called
	once.Do(func() {
		logger = NewLogger("")
	})
	return logger
}

// NewLogger creates a Logger writing to stdout and ./logs
func NewLogger(logsWebhook string) *Logger {
	return newLogger(os.Stdout, filepath.Join(".", "logs"), logsWebhook)
}

func newLogger(out io.Writer, logsDir, logsWebhook string) *Logger {
	l := &Logger{logrus: logrus.New()}

	l.logrus.SetOutput(out)
	l.logrus.SetFormatter(&consoleFormatter{colors: true})
	l.logrus.SetLevel(logrus.DebugLevel)

	files, err := newFileHook(logsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log files: %v\n", err)
	} else {
		l.files = files
		l.logrus.AddHook(files)
	}

	if logsWebhook != "" {
		l.logrus.AddHook(newWebhookHook(logsWebhook))
	}

	return l
}

// log is the internal logging function
func (l *Logger) log(level LogLevel, message string, prefix string) {
	l.logrus.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	}).Log(level.logrusLevel(), message)
}

// Close closes the log files
func (l *Logger) Close() {
	if l.files != nil {
		l.files.Close()
	}
}

// Logrus exposes the underlying logrus instance
func (l *Logger) Logrus() *logrus.Logger {
	return l.logrus
}

// Logging methods

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix)
}

// Error logs an error message
func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix)
}

// Success logs a success message
func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix)
}

// Info logs an info message
func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix)
}

// System logs a system message
func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

// Error logs an error message using the global logger
func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

// Success logs a success message using the global logger
func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

// Info logs an info message using the global logger
func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

// System logs a system message using the global logger
func System(message string, prefix string) {
	Get().System(message, prefix)
}
