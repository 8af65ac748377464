// browse.go — сервис просмотра папки: поиск, фильтр по типу, сортировка.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shubhanshu-02/FileShare/internal/domain/listing"
	"github.com/shubhanshu-02/FileShare/internal/domain/model"
	"github.com/shubhanshu-02/FileShare/internal/repository"
)

var browseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "fs_browse_duration_seconds",
	Help:    "Длительность построения представления папки в секундах.",
	Buckets: prometheus.DefBuckets,
})

// BrowseParams — параметры запроса просмотра в строковом виде.
type BrowseParams struct {
	// FolderID — UUID папки; nil или пусто — корень
	FolderID *string
	// Search — подстрока поиска по имени
	Search string
	// Types — категории файлов (image, video, audio, document, other)
	Types []string
	// Sort — ключ сортировки; пусто — date-desc
	Sort string
}

// BrowseResult — содержимое папки и путь до неё.
type BrowseResult struct {
	Folders []*model.FolderRecord
	Files   []*model.FileRecord
	// Path — цепочка папок от корня до текущей; пусто для корня
	Path []*model.FolderRecord
}

// BrowseService строит представление папки.
type BrowseService struct {
	folders repository.FolderRepository
	files   repository.FileRepository
	logger  *slog.Logger
}

// NewBrowseService создаёт сервис просмотра.
func NewBrowseService(
	folders repository.FolderRepository,
	files repository.FileRepository,
	logger *slog.Logger,
) *BrowseService {
	return &BrowseService{
		folders: folders,
		files:   files,
		logger:  logger.With(slog.String("component", "browse_service")),
	}
}

// Browse разбирает параметры, загружает подпапки и файлы текущего уровня
// и применяет listing.Build. Для корня всё дерево папок не читается.
func (s *BrowseService) Browse(ctx context.Context, params BrowseParams) (*BrowseResult, error) {
	start := time.Now()
	defer func() { browseDuration.Observe(time.Since(start).Seconds()) }()

	q, err := parseQuery(params)
	if err != nil {
		return nil, err
	}

	if q.Scope != nil {
		if _, err := s.folders.GetByID(ctx, *q.Scope); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: папка %s", ErrNotFound, *q.Scope)
			}
			return nil, fmt.Errorf("получение папки: %w", err)
		}
	}

	folders, err := s.folders.ListByParent(ctx, q.Scope)
	if err != nil {
		return nil, fmt.Errorf("получение подпапок: %w", err)
	}
	files, err := s.files.ListByFolder(ctx, q.Scope)
	if err != nil {
		return nil, fmt.Errorf("получение файлов папки: %w", err)
	}

	view := listing.Build(files, folders, q)
	result := &BrowseResult{Folders: view.Folders, Files: view.Files}
	if q.Scope != nil {
		// Путь до корня требует всё дерево
		all, err := s.folders.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("получение списка папок: %w", err)
		}
		result.Path = listing.Path(all, *q.Scope)
	}

	s.logger.Debug("Просмотр папки",
		slog.Int("folders", len(result.Folders)),
		slog.Int("files", len(result.Files)),
		slog.String("sort", string(q.Sort)),
	)
	return result, nil
}

// parseQuery проверяет строковые параметры и строит listing.Query.
func parseQuery(params BrowseParams) (listing.Query, error) {
	var q listing.Query
	if params.FolderID != nil && *params.FolderID != "" {
		id := *params.FolderID
		q.Scope = &id
	}
	q.Search = params.Search

	for _, t := range params.Types {
		if t == "" {
			continue
		}
		c, err := listing.ParseCategory(t)
		if err != nil {
			return q, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		q.Types = append(q.Types, c)
	}

	sortKey, err := listing.ParseSortKey(params.Sort)
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	q.Sort = sortKey
	return q, nil
}
