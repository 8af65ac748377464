// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// FileShare мониторит:
//   - PostgreSQL — SQL checker через существующий pgxpool (connection pool mode, critical)
//   - Объектное хранилище — HTTP checker к health endpoint (FS_STORAGE_HEALTH_URL, опционально)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthParams — параметры мониторинга зависимостей.
type DephealthParams struct {
	// ServiceID — имя вершины графа текущего приложения
	ServiceID string
	// Group — имя группы в метриках (FS_DEPHEALTH_GROUP)
	Group string
	// DB — *sql.DB, полученный из pgxpool через stdlib.OpenDBFromPool(); nil — без PostgreSQL
	DB *sql.DB
	// PgConnURL — URL PostgreSQL для лейблов метрик (без пароля)
	PgConnURL string
	// StorageHealthURL — URL health endpoint объектного хранилища; пусто — не мониторится
	StorageHealthURL string
	// CheckInterval — интервал проверки (FS_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(params DephealthParams, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(params, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	params DephealthParams,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(params, logger, dephealth.WithRegisterer(registerer))
}

// newDephealthService — внутренний конструктор.
func newDephealthService(
	params DephealthParams,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	if params.DB == nil && params.StorageHealthURL == "" {
		return nil, errors.New("не задано ни одной зависимости для мониторинга")
	}

	opts := make([]dephealth.Option, 0, 3+len(extraOpts))
	opts = append(opts, dephealth.WithLogger(logger))

	if params.DB != nil {
		opts = append(opts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(params.DB)),
			dephealth.FromURL(params.PgConnURL),
			dephealth.CheckInterval(params.CheckInterval),
			dephealth.Critical(true),
		))
	}

	if params.StorageHealthURL != "" {
		parsed, err := url.Parse(params.StorageHealthURL)
		if err != nil {
			return nil, err
		}
		healthPath := parsed.Path
		if healthPath == "" {
			healthPath = "/"
		}
		base := url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

		storageOpts := []dephealth.DependencyOption{
			dephealth.FromURL(base.String()),
			dephealth.WithHTTPHealthPath(healthPath),
			dephealth.CheckInterval(params.CheckInterval),
			dephealth.Critical(false),
		}
		if parsed.Scheme == "https" {
			storageOpts = append(storageOpts, dephealth.WithHTTPTLSSkipVerify(false))
		}
		opts = append(opts, dephealth.HTTP("object-storage", storageOpts...))
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(params.ServiceID, params.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
