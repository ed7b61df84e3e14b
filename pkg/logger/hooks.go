package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const webhookFooter = "💫 Developed by PancyStudio | PancyCompanion Go"

func levelOf(entry *logrus.Entry) LogLevel {
	if level, ok := entry.Data[fieldLevel].(LogLevel); ok {
		return level
	}
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func prefixOf(entry *logrus.Entry) string {
	if prefix, ok := entry.Data[fieldPrefix].(string); ok && prefix != "" {
		return prefix
	}
	return "Bot"
}

// consoleFormatter renders "[time] [LEVEL] [prefix]: message"
type consoleFormatter struct {
	colors bool
}

func (f *consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := levelOf(entry)
	name := level.String()
	if f.colors {
		name = level.Color().Sprint(name)
	}
	line := fmt.Sprintf("[%s] [%s] [%s]: %s\n",
		entry.Time.Format(timeFormat),
		name,
		prefixOf(entry),
		entry.Message,
	)
	return []byte(line), nil
}

// fileHook writes every entry to combined.log and error entries to error.log
type fileHook struct {
	combined  *os.File
	errors    *os.File
	formatter logrus.Formatter
	mu        sync.Mutex
}

func newFileHook(dir string) (*fileHook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	combined, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	errorsFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		combined.Close()
		return nil, err
	}

	return &fileHook{
		combined:  combined,
		errors:    errorsFile,
		formatter: &consoleFormatter{colors: false},
	}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.combined.Write(line); err != nil {
		return err
	}
	if levelOf(entry) <= LevelError {
		if _, err := h.errors.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (h *fileHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.combined.Close()
	h.errors.Close()
}

// webhookHook mirrors log entries to a Discord webhook as embeds. Delivery is asynchronous and best-effort.
type webhookHook struct {
	url    string
	client *http.Client
}

func newWebhookHook(url string) *webhookHook {
	return &webhookHook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level := levelOf(entry)
	payload := webhookPayload(level, entry.Message, prefixOf(entry), entry.Time)
	go h.send(payload)
	return nil
}

func webhookPayload(level LogLevel, message, prefix string, at time.Time) map[string]interface{} {
	embed := map[string]interface{}{
		"title":       fmt.Sprintf("[%s] %s", level.String(), prefix),
		"description": fmt.Sprintf("```%s```", message),
		"color":       level.DiscordColor(),
		"timestamp":   at.Format(time.RFC3339),
		"footer": map[string]string{
			"text": webhookFooter,
		},
	}

	return map[string]interface{}{
		"embeds": []interface{}{embed},
	}
}

func (h *webhookHook) send(payload map[string]interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, h.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
