// folders.go — сервис папок: создание, просмотр и каскадное удаление
// поддерева (файлы из хранилища и БД, затем папки от листьев к корню).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shubhanshu-02/FileShare/internal/domain/listing"
	"github.com/shubhanshu-02/FileShare/internal/domain/model"
	"github.com/shubhanshu-02/FileShare/internal/events"
	"github.com/shubhanshu-02/FileShare/internal/repository"
	"github.com/shubhanshu-02/FileShare/internal/storage"
)

// maxNameLength — ограничение длины имени файла и папки (VARCHAR(255)).
const maxNameLength = 255

// Prometheus-метрики удаления папок.
var (
	folderDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fs_folder_deletes_total",
		Help: "Количество каскадных удалений папок (по результату).",
	}, []string{"status"})

	cascadeSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fs_folder_cascade_size",
		Help:    "Количество удалённых записей за одно каскадное удаление.",
		Buckets: []float64{1, 2, 5, 10, 50, 100, 500, 1000, 5000},
	}, []string{"kind"})
)

// FolderDetails — папка и путь до неё от корня.
type FolderDetails struct {
	Folder *model.FolderRecord
	Path   []*model.FolderRecord
}

// DeleteResult — итог каскадного удаления.
type DeleteResult struct {
	// Folders — удалено папок (включая целевую)
	Folders int
	// Files — удалено файлов
	Files int
}

// FolderService — операции над деревом папок.
type FolderService struct {
	folders repository.FolderRepository
	files   repository.FileRepository
	store   storage.ObjectStore
	events  events.Publisher
	logger  *slog.Logger
}

// NewFolderService создаёт сервис папок.
func NewFolderService(
	folders repository.FolderRepository,
	files repository.FileRepository,
	store storage.ObjectStore,
	publisher events.Publisher,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		folders: folders,
		files:   files,
		store:   store,
		events:  publisher,
		logger:  logger.With(slog.String("component", "folder_service")),
	}
}

// Create создаёт папку. Имя обрезается по краям и не может быть пустым.
// parentID == nil — папка в корне; несуществующий родитель — ErrNotFound.
func (s *FolderService) Create(ctx context.Context, name string, parentID *string) (*model.FolderRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: имя папки не может быть пустым", ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: имя папки длиннее %d символов", ErrValidation, maxNameLength)
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	if parentID != nil {
		if _, err := s.folders.GetByID(ctx, *parentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: родительская папка %s", ErrNotFound, *parentID)
			}
			return nil, fmt.Errorf("получение родительской папки: %w", err)
		}
	}

	folder := &model.FolderRecord{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		// Родителя удалили между проверкой и вставкой
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: родительская папка %s", ErrNotFound, *parentID)
		}
		return nil, fmt.Errorf("создание папки: %w", err)
	}

	s.logger.Info("Папка создана",
		slog.String("folder_id", folder.ID),
		slog.String("name", folder.Name),
	)
	s.events.Publish(events.Event{Type: events.FolderCreated, ID: folder.ID, FolderID: folder.ParentID})
	return folder, nil
}

// Get возвращает папку и путь до неё (breadcrumb).
func (s *FolderService) Get(ctx context.Context, folderID string) (*FolderDetails, error) {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: папка %s", ErrNotFound, folderID)
		}
		return nil, fmt.Errorf("получение папки: %w", err)
	}

	all, err := s.folders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка папок: %w", err)
	}

	return &FolderDetails{Folder: folder, Path: listing.Path(all, folder.ID)}, nil
}

// List возвращает все папки, упорядоченные по имени.
func (s *FolderService) List(ctx context.Context) ([]*model.FolderRecord, error) {
	folders, err := s.folders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка папок: %w", err)
	}
	return folders, nil
}

// DeleteRecursive удаляет папку вместе со всеми вложенными папками и файлами.
//
// Порядок:
//  1. Найти папку (нет — ErrNotFound, без изменений)
//  2. Одной выборкой получить все папки, построить индекс parent→children
//     и обойти поддерево явной очередью (без рекурсии)
//  3. Одной выборкой получить файлы всех папок поддерева
//  4. Для каждого файла: удалить объект, затем запись. Ошибка хранилища
//     останавливает каскад (ErrStorage), запись этого файла сохраняется
//  5. Удалить папки в обратном порядке обхода (дети раньше родителей)
//
// Каскад не транзакционен: при сбое посередине часть поддерева
// может остаться удалённой.
func (s *FolderService) DeleteRecursive(ctx context.Context, folderID string) (*DeleteResult, error) {
	if strings.TrimSpace(folderID) == "" {
		folderDeletesTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: корень не может быть удалён", ErrValidation)
	}

	// 1. Целевая папка
	if _, err := s.folders.GetByID(ctx, folderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			folderDeletesTotal.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("%w: папка %s", ErrNotFound, folderID)
		}
		folderDeletesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("получение папки: %w", err)
	}

	// 2. Поддерево
	all, err := s.folders.ListAll(ctx)
	if err != nil {
		folderDeletesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("получение списка папок: %w", err)
	}
	order := subtreeOrder(all, folderID)

	// 3. Файлы поддерева
	files, err := s.files.ListByFolders(ctx, order)
	if err != nil {
		folderDeletesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("получение файлов поддерева: %w", err)
	}

	s.logger.Info("Каскадное удаление папки",
		slog.String("folder_id", folderID),
		slog.Int("folders", len(order)),
		slog.Int("files", len(files)),
	)

	result := &DeleteResult{}
	changed := make(map[string]*string)

	// 4. Файлы: объект → запись
	for _, f := range files {
		if err := s.store.Delete(ctx, f.StorageKey); err != nil {
			folderDeletesTotal.WithLabelValues("storage_error").Inc()
			s.logger.Error("Ошибка удаления объекта, каскад остановлен",
				slog.String("folder_id", folderID),
				slog.String("file_id", f.ID),
				slog.String("storage_key", f.StorageKey),
				slog.Int("files_deleted", result.Files),
				slog.String("error", err.Error()),
			)
			s.publishDeleted(changed)
			return result, fmt.Errorf("%w: файл %s: %w", ErrStorage, f.ID, err)
		}

		if err := s.files.Delete(ctx, f.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			folderDeletesTotal.WithLabelValues("error").Inc()
			s.publishDeleted(changed)
			return result, fmt.Errorf("удаление записи файла %s: %w", f.ID, err)
		}
		s.events.Publish(events.Event{Type: events.FileDeleted, ID: f.ID, FolderID: f.FolderID})
		result.Files++
	}

	// 5. Папки: от листьев к корню поддерева
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		err := s.folders.Delete(ctx, id)
		switch {
		case err == nil:
			result.Folders++
			changed[id] = parentOf(all, id)
		case errors.Is(err, repository.ErrNotFound):
			// Удалена параллельно
		case errors.Is(err, repository.ErrConflict):
			folderDeletesTotal.WithLabelValues("conflict").Inc()
			s.publishDeleted(changed)
			return result, fmt.Errorf("%w: в папку %s добавлены данные во время удаления", ErrConflict, id)
		default:
			folderDeletesTotal.WithLabelValues("error").Inc()
			s.publishDeleted(changed)
			return result, fmt.Errorf("удаление папки %s: %w", id, err)
		}
	}

	folderDeletesTotal.WithLabelValues("ok").Inc()
	cascadeSize.WithLabelValues("folders").Observe(float64(result.Folders))
	cascadeSize.WithLabelValues("files").Observe(float64(result.Files))

	s.logger.Info("Папка удалена",
		slog.String("folder_id", folderID),
		slog.Int("folders", result.Folders),
		slog.Int("files", result.Files),
	)
	s.publishDeleted(changed)
	return result, nil
}

// publishDeleted оповещает об удалённых папках.
func (s *FolderService) publishDeleted(deleted map[string]*string) {
	for id, parent := range deleted {
		s.events.Publish(events.Event{Type: events.FolderDeleted, ID: id, FolderID: parent})
	}
}

// subtreeOrder возвращает rootID и всех его потомков в порядке обхода
// в ширину (родитель раньше детей). Индекс parent→children строится один
// раз; посещённые узлы не обходятся повторно.
func subtreeOrder(all []*model.FolderRecord, rootID string) []string {
	children := make(map[string][]string, len(all))
	for _, f := range all {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	order := []string{rootID}
	visited := map[string]bool{rootID: true}
	for i := 0; i < len(order); i++ {
		for _, child := range children[order[i]] {
			if visited[child] {
				continue
			}
			visited[child] = true
			order = append(order, child)
		}
	}
	return order
}

// parentOf возвращает родителя папки по полному списку.
func parentOf(all []*model.FolderRecord, id string) *string {
	for _, f := range all {
		if f.ID == id {
			return f.ParentID
		}
	}
	return nil
}
