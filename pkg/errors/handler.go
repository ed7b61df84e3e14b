// Package errors provides error reporting and panic recovery for the bot.
// Failures are logged, forwarded once to the error webhook and never stop the process.
package errors

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/getsentry/raven-go"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// maxContentLength is the Discord message content limit
const maxContentLength = 2000

// Reporter forwards a failure to the outside world
type Reporter interface {
	ReportError(title string, err error)
}

// ErrorHandler sends failure reports to the error webhook
type ErrorHandler struct {
	webhookURL string
	client     *http.Client
	limiter    *rate.Limiter
	sentry     *raven.Client
	errorCount int64
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Title   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL, sentryDSN string) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, sentryDSN)
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates a new ErrorHandler instance. An empty sentryDSN disables Sentry.
func NewErrorHandler(webhookURL, sentryDSN string) *ErrorHandler {
	h := &ErrorHandler{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		// Discord allows 30 webhook messages per minute
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}

	if sentryDSN != "" {
		client, err := raven.NewClient(sentryDSN, map[string]string{"app": "PancyCompanion"})
		if err != nil {
			logger.Warn(fmt.Sprintf("Sentry deshabilitado: %v", err), "AntiCrash")
		} else {
			h.sentry = client
		}
	}

	return h
}

// ErrorCount returns how many failures were reported since start
func (h *ErrorHandler) ErrorCount() int64 {
	return atomic.LoadInt64(&h.errorCount)
}

// ReportError logs err and forwards it to the webhook as plain text
func (h *ErrorHandler) ReportError(title string, err error) {
	if err == nil {
		return
	}
	atomic.AddInt64(&h.errorCount, 1)

	incident := uuid.NewString()
	logger.Error(fmt.Sprintf("%s [%s]: %v", title, incident, err), "AntiCrash")

	if h.sentry != nil {
		h.sentry.CaptureError(err, map[string]string{"title": title, "incident": incident})
	}

	if sendErr := h.Report(ReportErrorOptions{
		Title:   fmt.Sprintf("%s (%s)", title, incident),
		Message: fmt.Sprintf("%+v", err),
	}); sendErr != nil {
		logger.Warn(fmt.Sprintf("Failed to send error report: %v", sendErr), "AntiCrash")
	}
}

// HandlePanic handles a recovered panic
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	h.ReportError("Unhandled panic", FromPanic(recovered))
}

// Report sends the report content to the Discord webhook. Bursts are delayed by the limiter, not dropped.
func (h *ErrorHandler) Report(data ReportErrorOptions) error {
	if h.webhookURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := h.limiter.Wait(ctx); err != nil {
		return pkgerrors.Wrap(err, "waiting for webhook slot")
	}

	payload := map[string]interface{}{
		"content": formatContent(data.Title, data.Message),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal error report")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return pkgerrors.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "send error report")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return pkgerrors.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// formatContent renders "title: \n```message```" and trims the message so the result fits a Discord message
func formatContent(title, message string) string {
	head := title + ": \n```"
	const tail = "```"

	budget := maxContentLength - utf8.RuneCountInString(head) - len(tail)
	if budget < 0 {
		budget = 0
	}
	if utf8.RuneCountInString(message) > budget {
		runes := []rune(message)
		if budget > 1 {
			message = string(runes[:budget-1]) + "…"
		} else {
			message = string(runes[:budget])
		}
	}
	return head + message + tail
}

// FromPanic converts a recovered value into an error carrying a stack trace
func FromPanic(recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return pkgerrors.WithStack(err)
	}
	return pkgerrors.Errorf("panic: %v", recovered)
}

// Capture runs fn and turns a panic inside it into a returned error
func Capture(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = FromPanic(r)
		}
	}()
	return fn()
}

// RecoverMiddleware returns a recovery function for use in deferred calls
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}

// ReportError reports through the global handler, falling back to the log when it is not initialized
func ReportError(title string, err error) {
	if handler == nil {
		if err != nil {
			logger.Error(fmt.Sprintf("%s: %v", title, err), "AntiCrash")
		}
		return
	}
	handler.ReportError(title, err)
}
