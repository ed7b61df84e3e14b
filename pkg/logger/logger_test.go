package logger

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	l := newLogger(&out, t.TempDir(), "")
	if l == nil {
		t.Fatal("Expected logger to be created, got nil")
	}
	defer l.Close()

	// Test that logger methods don't panic
	l.Critical("Test critical message", "TEST")
	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")

	if got := strings.Count(out.String(), "\n"); got != 6 {
		t.Errorf("console lines = %v, want %v", got, 6)
	}
}

func TestConsoleFormat(t *testing.T) {
	var out bytes.Buffer
	l := newLogger(&out, t.TempDir(), "")
	defer l.Close()
	l.logrus.SetFormatter(&consoleFormatter{colors: false})

	l.Warn("disk almost full", "Storage")

	line := out.String()
	if !strings.Contains(line, "] [WARN] [Storage]: disk almost full") {
		t.Errorf("console line = %q, want level, prefix and message", line)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelColor(t *testing.T) {
	levels := []LogLevel{
		LevelCritical,
		LevelError,
		LevelWarn,
		LevelSuccess,
		LevelInfo,
		LevelDebug,
		LevelSystem,
	}

	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			if level.Color() == nil {
				t.Error("Expected color to be non-nil")
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestLogFiles(t *testing.T) {
	logsDir := filepath.Join(t.TempDir(), "logs")

	l := newLogger(io.Discard, logsDir, "")
	l.Info("just information", "TEST")
	l.Error("something broke", "TEST")
	l.Critical("everything broke", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(logsDir, "combined.log"))
	if err != nil {
		t.Fatalf("Expected combined.log to be created: %v", err)
	}
	errorLog, err := os.ReadFile(filepath.Join(logsDir, "error.log"))
	if err != nil {
		t.Fatalf("Expected error.log to be created: %v", err)
	}

	if got := strings.Count(string(combined), "\n"); got != 3 {
		t.Errorf("combined.log lines = %v, want %v", got, 3)
	}
	if got := strings.Count(string(errorLog), "\n"); got != 2 {
		t.Errorf("error.log lines = %v, want %v", got, 2)
	}
	if strings.Contains(string(errorLog), "just information") {
		t.Error("error.log should not contain info entries")
	}
	if strings.Contains(string(combined), "\x1b[") {
		t.Error("log files should not contain color codes")
	}
}

func TestWebhookHook(t *testing.T) {
	received := make(chan map[string]interface{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	l := newLogger(io.Discard, t.TempDir(), server.URL)
	defer l.Close()

	l.Success("Bot ready", "Client")

	select {
	case payload := <-received:
		embeds, ok := payload["embeds"].([]interface{})
		if !ok || len(embeds) != 1 {
			t.Fatalf("embeds = %v, want one embed", payload["embeds"])
		}
		embed := embeds[0].(map[string]interface{})
		if embed["title"] != "[SUCCESS] Client" {
			t.Errorf("title = %v, want %v", embed["title"], "[SUCCESS] Client")
		}
		if embed["description"] != "```Bot ready```" {
			t.Errorf("description = %v, want %v", embed["description"], "```Bot ready```")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	// Reset the global logger for this test
	logger = nil
	once = sync.Once{}

	l := Init("")
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}

	// Calling Init again should return the same logger
	l2 := Init("different")
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	// Get should return the same logger
	l3 := Get()
	if l != l3 {
		t.Error("Expected Get to return the same logger")
	}
}
