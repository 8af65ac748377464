// Пакет service — бизнес-логика FileShare.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shubhanshu-02/FileShare/internal/domain/model"
	"github.com/shubhanshu-02/FileShare/internal/events"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fs_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш метаданных.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fs_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша метаданных.",
	})
	cacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fs_cache_invalidations_total",
		Help: "Количество записей, удалённых из кэша по событию file.deleted.",
	})
)

// CacheService — кэш FileRecord по ID файла (LRU + TTL).
//
// Записи неизменяемы, поэтому устаревают только при удалении файла.
// Сервисы не удаляют записи напрямую: CacheService подписан на поток
// событий (events.Publisher) и сам вычищает файл по file.deleted, в том
// числе при каскадном удалении папки.
type CacheService struct {
	cache *expirable.LRU[string, *model.FileRecord]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	return &CacheService{cache: expirable.NewLRU[string, *model.FileRecord](maxSize, nil, ttl)}
}

// Get возвращает FileRecord из кэша по fileID.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(fileID string) (*model.FileRecord, bool) {
	val, ok := c.cache.Get(fileID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(fileID string, record *model.FileRecord) {
	c.cache.Add(fileID, record)
}

// Publish реализует events.Publisher: file.deleted вытесняет запись,
// остальные события игнорируются.
func (c *CacheService) Publish(e events.Event) {
	if e.Type != events.FileDeleted {
		return
	}
	if c.cache.Remove(e.ID) {
		cacheInvalidationsTotal.Inc()
	}
}

// Len возвращает количество записей в кэше.
func (c *CacheService) Len() int {
	return c.cache.Len()
}
