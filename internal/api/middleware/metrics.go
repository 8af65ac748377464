// metrics.go — Prometheus HTTP метрики FileShare.
// Регистрирует метрики: fs_http_requests_total, fs_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики FileShare
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fs_http_requests_total",
			Help: "Общее количество HTTP-запросов к FileShare",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fs_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к FileShare в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack нужен для WebSocket (/api/v1/events).
func (rw *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return hijack(rw.ResponseWriter, &rw.statusCode)
}

// uuidLen — длина UUID в каноническом текстовом виде.
const uuidLen = 36

// normalizePath заменяет идентификаторы в пути на плейсхолдеры:
// /api/v1/files/a1b2c3d4-... → /api/v1/files/{id}
// /api/v1/files/a1b2c3d4-.../content → /api/v1/files/{id}/content
// /s/eyJhbGciOi... → /s/{token}
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics", "/api/openapi.yaml",
		"/api/v1/files", "/api/v1/files/types", "/api/v1/folders",
		"/api/v1/browse", "/api/v1/events":
		return path
	}

	const (
		filesPrefix   = "/api/v1/files/"
		foldersPrefix = "/api/v1/folders/"
	)
	switch {
	case strings.HasPrefix(path, filesPrefix):
		switch suffix := idSuffix(path[len(filesPrefix):]); suffix {
		case "":
			return "/api/v1/files/{id}"
		case "/content", "/share":
			return "/api/v1/files/{id}" + suffix
		}
	case strings.HasPrefix(path, foldersPrefix):
		if idSuffix(path[len(foldersPrefix):]) == "" {
			return "/api/v1/folders/{id}"
		}
	case strings.HasPrefix(path, "/s/"):
		return "/s/{token}"
	case strings.HasPrefix(path, "/objects/"):
		return "/objects/{key}"
	}
	return "other"
}

// idSuffix возвращает остаток пути после сегмента-идентификатора.
func idSuffix(rest string) string {
	if len(rest) > uuidLen {
		return rest[uuidLen:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return ""
}
