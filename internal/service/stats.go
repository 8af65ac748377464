// stats.go — периодический сбор статистики хранилища по расписанию cron.
//
// Публикует gauge-метрики:
//   - fs_files — общее количество файлов
//   - fs_folders — общее количество папок
//   - fs_stored_bytes — суммарный объём файлов
//   - fs_files_by_category{category} — количество файлов по категориям
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/shubhanshu-02/FileShare/internal/domain/listing"
	"github.com/shubhanshu-02/FileShare/internal/repository"
)

// statsTimeout — предельная длительность одного сбора.
const statsTimeout = 30 * time.Second

// Prometheus-метрики статистики
var (
	filesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fs_files",
		Help: "Количество файлов в хранилище.",
	})
	foldersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fs_folders",
		Help: "Количество папок.",
	})
	storedBytesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fs_stored_bytes",
		Help: "Суммарный объём файлов в байтах.",
	})
	filesByCategory = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fs_files_by_category",
		Help: "Количество файлов по категориям.",
	}, []string{"category"})
	statsRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fs_stats_runs_total",
		Help: "Количество запусков сбора статистики (по результату).",
	}, []string{"status"})
)

// Stats — результат одного сбора.
type Stats struct {
	Files       int
	Folders     int
	StoredBytes int64
	ByCategory  map[listing.Category]int
}

// StatsService — фоновый сбор статистики по расписанию.
type StatsService struct {
	files    repository.FileRepository
	folders  repository.FolderRepository
	schedule string
	logger   *slog.Logger

	mu   sync.Mutex // защита cron
	cron *cron.Cron
}

// NewStatsService создаёт сервис статистики.
// schedule — выражение cron (стандартное или дескриптор, например "@every 5m").
func NewStatsService(
	files repository.FileRepository,
	folders repository.FolderRepository,
	schedule string,
	logger *slog.Logger,
) (*StatsService, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("некорректное расписание %q: %w", schedule, err)
	}
	return &StatsService{
		files:    files,
		folders:  folders,
		schedule: schedule,
		logger:   logger.With(slog.String("component", "stats")),
	}, nil
}

// Start выполняет первый сбор и запускает планировщик.
func (s *StatsService) Start(ctx context.Context) error {
	if _, err := s.CollectNow(ctx); err != nil {
		s.logger.Warn("Первичный сбор статистики не удался", slog.String("error", err.Error()))
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		if _, err := s.CollectNow(runCtx); err != nil {
			s.logger.Error("Ошибка сбора статистики", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("регистрация задачи статистики: %w", err)
	}
	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	s.logger.Info("Сбор статистики запущен", slog.String("schedule", s.schedule))
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущего сбора.
func (s *StatsService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("Сбор статистики остановлен")
}

// CollectNow собирает статистику и обновляет метрики.
func (s *StatsService) CollectNow(ctx context.Context) (*Stats, error) {
	start := time.Now()

	files, err := s.files.ListAll(ctx)
	if err != nil {
		statsRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("получение списка файлов: %w", err)
	}
	folders, err := s.folders.ListAll(ctx)
	if err != nil {
		statsRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("получение списка папок: %w", err)
	}

	stats := &Stats{
		Files:       len(files),
		Folders:     len(folders),
		StoredBytes: listing.TotalSize(files),
		ByCategory:  make(map[listing.Category]int, len(listing.AllCategories)),
	}
	for _, tc := range listing.TypeCounts(files) {
		stats.ByCategory[tc.Category] = tc.Count
	}

	filesGauge.Set(float64(stats.Files))
	foldersGauge.Set(float64(stats.Folders))
	storedBytesGauge.Set(float64(stats.StoredBytes))
	for _, c := range listing.AllCategories {
		filesByCategory.WithLabelValues(string(c)).Set(float64(stats.ByCategory[c]))
	}
	statsRunsTotal.WithLabelValues("ok").Inc()

	s.logger.Debug("Статистика собрана",
		slog.Int("files", stats.Files),
		slog.Int("folders", stats.Folders),
		slog.Int64("stored_bytes", stats.StoredBytes),
		slog.Duration("duration", time.Since(start)),
	)
	return stats, nil
}
