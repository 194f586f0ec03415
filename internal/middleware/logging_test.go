package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureLogger returns a JSON logger writing into buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogging_BasicFields(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf)

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/rankings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["method"] != "POST" {
		t.Errorf("method = %v, want POST", entry["method"])
	}
	if entry["path"] != "/rankings" {
		t.Errorf("path = %v, want /rankings", entry["path"])
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if _, ok := entry["latency_ms"]; !ok {
		t.Error("latency_ms missing from log entry")
	}
}

func TestLogging_UserIDAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Simulate auth middleware populating the user ID
	withUser := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), "user-42")))
	})
	handler := RequestID(Logging(logger)(withUser))

	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["user_id"] != "user-42" {
		t.Errorf("user_id = %v, want user-42", entry["user_id"])
	}
	if entry["request_id"] != "req-abc" {
		t.Errorf("request_id = %v, want req-abc", entry["request_id"])
	}
}

func TestLogging_ErrorLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "2xx logs info", status: http.StatusOK, wantLevel: "INFO"},
		{name: "4xx logs warn", status: http.StatusBadRequest, wantLevel: "WARN"},
		{name: "5xx logs error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := captureLogger(&buf)

			handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, "/deals", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log output is not JSON: %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
		})
	}
}

func TestLogging_ErrorCode(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Error code is stashed by the handler before writing the response
		*r = *r.WithContext(SetErrorCode(r.Context(), "NOT_FOUND"))
		w.WriteHeader(http.StatusNotFound)
	})
	handler := Logging(logger)(inner)

	req := httptest.NewRequest(http.MethodGet, "/deals/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["error_code"] != "NOT_FOUND" {
		t.Errorf("error_code = %v, want NOT_FOUND", entry["error_code"])
	}
}

func TestNewLogger(t *testing.T) {
	if NewLogger("production") == nil {
		t.Error("NewLogger(production) returned nil")
	}
	if NewLogger("development") == nil {
		t.Error("NewLogger(development) returned nil")
	}
}
