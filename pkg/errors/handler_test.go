package errors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"
)

type webhookRecorder struct {
	mu       sync.Mutex
	contents []string
}

func (r *webhookRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		r.mu.Lock()
		r.contents = append(r.contents, payload.Content)
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (r *webhookRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.contents...)
}

func TestReportErrorSendsOneReport(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler(t))
	defer server.Close()

	h := NewErrorHandler(server.URL, "")
	h.ReportError("Error in command ping", pkgerrors.New("boom"))

	contents := rec.all()
	if len(contents) != 1 {
		t.Fatalf("reports = %v, want %v", len(contents), 1)
	}
	if !strings.HasPrefix(contents[0], "Error in command ping (") {
		t.Errorf("content = %q, want title prefix", contents[0])
	}
	if !strings.Contains(contents[0], "boom") {
		t.Errorf("content = %q, want error message", contents[0])
	}
	if !strings.HasSuffix(contents[0], "```") {
		t.Errorf("content = %q, want closing code block", contents[0])
	}
	if h.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %v, want %v", h.ErrorCount(), 1)
	}
}

func TestReportErrorIgnoresNil(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler(t))
	defer server.Close()

	h := NewErrorHandler(server.URL, "")
	h.ReportError("nothing", nil)

	if got := len(rec.all()); got != 0 {
		t.Errorf("reports = %v, want %v", got, 0)
	}
}

func TestReportWithoutWebhook(t *testing.T) {
	h := NewErrorHandler("", "")
	if err := h.Report(ReportErrorOptions{Title: "t", Message: "m"}); err != nil {
		t.Errorf("Report() error = %v, want nil", err)
	}
}

func TestReportStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	h := NewErrorHandler(server.URL, "")
	if err := h.Report(ReportErrorOptions{Title: "t", Message: "m"}); err == nil {
		t.Error("Report() should fail on a non-2xx status")
	}
}

func TestFormatContent(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		message string
		want    string
	}{
		{"short", "Error in prefix command help", "oops", "Error in prefix command help: \n```oops```"},
		{"empty message", "t", "", "t: \n``````"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatContent(tt.title, tt.message); got != tt.want {
				t.Errorf("formatContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatContentTruncates(t *testing.T) {
	got := formatContent("Error in command stats", strings.Repeat("é", 5000))

	if n := utf8.RuneCountInString(got); n != maxContentLength {
		t.Errorf("content length = %v, want %v", n, maxContentLength)
	}
	if !strings.HasSuffix(got, "…```") {
		t.Errorf("content should end with an ellipsis and closing code block, got %q", got[len(got)-10:])
	}
}

func TestCapture(t *testing.T) {
	t.Run("returns error", func(t *testing.T) {
		want := pkgerrors.New("failed")
		if err := Capture(func() error { return want }); err != want {
			t.Errorf("Capture() = %v, want %v", err, want)
		}
	})

	t.Run("converts panic", func(t *testing.T) {
		err := Capture(func() error { panic("kaboom") })
		if err == nil || !strings.Contains(err.Error(), "kaboom") {
			t.Errorf("Capture() = %v, want panic converted to error", err)
		}
	})

	t.Run("keeps panicked error", func(t *testing.T) {
		cause := pkgerrors.New("nil map")
		err := Capture(func() error { panic(cause) })
		if pkgerrors.Cause(err) != cause {
			t.Errorf("Cause() = %v, want %v", pkgerrors.Cause(err), cause)
		}
	})
}

func TestRecoverMiddleware(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("panic escaped RecoverMiddleware: %v", r)
		}
	}()

	func() {
		defer RecoverMiddleware()()
		panic("recovered")
	}()
}
