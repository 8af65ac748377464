package middleware

import (
	"bufio"
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	const id = "0b6f1c5e-3f5a-4a57-9d2e-5a0c3e7e9a01"
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/v1/files", "/api/v1/files"},
		{"/api/v1/files/types", "/api/v1/files/types"},
		{"/api/v1/files/" + id, "/api/v1/files/{id}"},
		{"/api/v1/files/" + id + "/content", "/api/v1/files/{id}/content"},
		{"/api/v1/files/" + id + "/share", "/api/v1/files/{id}/share"},
		{"/api/v1/files/" + id + "/unknown", "other"},
		{"/api/v1/files/bad-id", "/api/v1/files/{id}"},
		{"/api/v1/folders/" + id, "/api/v1/folders/{id}"},
		{"/api/v1/browse", "/api/v1/browse"},
		{"/s/eyJhbGciOiJIUzI1NiJ9.e30.sig", "/s/{token}"},
		{"/objects/files/" + id + "/a.png", "/objects/{key}"},
		{"/favicon.ico", "other"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
		}
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusBadGateway, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte("body"))
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		out := buf.String()
		if !strings.Contains(out, tt.wantLevel) {
			t.Errorf("статус %d: лог %q не содержит %q", tt.status, out, tt.wantLevel)
		}
		if !strings.Contains(out, "bytes=4") {
			t.Errorf("лог не содержит размер ответа: %q", out)
		}
	}
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	h := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	const path = "/api/v1/folders/7d1e6a52-8b4f-4c1e-a3a2-3c9f0e8d2b10"
	counter := httpRequestsTotal.WithLabelValues(http.MethodDelete, "/api/v1/folders/{id}", "204")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("прирост счётчика = %v, ожидается 2", got)
	}
}

// hijackableRecorder — ResponseRecorder с поддержкой Hijack.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	server, client := net.Pipe()
	_ = client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

func TestWrappers_Hijack(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("обёртка не реализует http.Hijacker")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("Hijack: %v", err)
		}
		_ = conn.Close()
	})
	h := MetricsMiddleware()(RequestLogger(logger)(inner))

	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))

	if !rec.hijacked {
		t.Error("Hijack не передан исходному ResponseWriter")
	}
	if !strings.Contains(buf.String(), "status=101") {
		t.Errorf("после Hijack ожидается статус 101, лог: %q", buf.String())
	}
}

func TestWrappers_HijackUnsupported(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("ожидается ошибка для ResponseWriter без Hijack")
	}
}
