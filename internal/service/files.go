// files.go — сервис файлов: загрузка, метаданные, ссылки на содержимое
// и удаление. Порядок записи: объект, затем метаданные; порядок
// удаления: объект, затем метаданные.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
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

// defaultContentType — MIME-тип, если ни клиент, ни расширение его не дают.
const defaultContentType = "application/octet-stream"

// Prometheus-метрики файловых операций.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fs_uploads_total",
		Help: "Количество загруженных файлов (по результату).",
	}, []string{"status"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fs_upload_bytes_total",
		Help: "Объём успешно загруженных данных в байтах.",
	})

	fileDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fs_file_deletes_total",
		Help: "Количество удалений файлов (по результату).",
	}, []string{"status"})
)

// Upload — один файл из multipart-запроса.
type Upload struct {
	// Name — исходное имя файла
	Name string
	// ContentType — MIME-тип, заявленный клиентом (может быть пустым)
	ContentType string
	// Size — размер в байтах
	Size int64
	// Open открывает поток содержимого
	Open func() (io.ReadCloser, error)
}

// FileService — операции над файлами.
type FileService struct {
	files   repository.FileRepository
	folders repository.FolderRepository
	store   storage.ObjectStore
	cache   *CacheService
	events  events.Publisher
	logger  *slog.Logger
}

// NewFileService создаёт сервис файлов.
func NewFileService(
	files repository.FileRepository,
	folders repository.FolderRepository,
	store storage.ObjectStore,
	cache *CacheService,
	publisher events.Publisher,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		files:   files,
		folders: folders,
		store:   store,
		cache:   cache,
		events:  publisher,
		logger:  logger.With(slog.String("component", "file_service")),
	}
}

// Upload сохраняет файлы в папку folderID (nil — корень).
//
// Проверки выполняются до любых изменений: хотя бы один файл, корректные
// имена, существующая папка. Файлы обрабатываются последовательно;
// ошибка на середине пакета не откатывает уже сохранённые файлы.
// Возвращает созданные записи в порядке загрузки.
func (s *FileService) Upload(ctx context.Context, folderID *string, uploads []Upload) ([]*model.FileRecord, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: не передано ни одного файла", ErrValidation)
	}
	for i, u := range uploads {
		if strings.TrimSpace(u.Name) == "" {
			return nil, fmt.Errorf("%w: файл #%d без имени", ErrValidation, i+1)
		}
		if utf8.RuneCountInString(u.Name) > maxNameLength {
			return nil, fmt.Errorf("%w: имя файла длиннее %d символов", ErrValidation, maxNameLength)
		}
		if u.Size < 0 {
			return nil, fmt.Errorf("%w: отрицательный размер файла %q", ErrValidation, u.Name)
		}
		if u.Open == nil {
			return nil, fmt.Errorf("%w: нет содержимого файла %q", ErrValidation, u.Name)
		}
	}
	if folderID != nil && *folderID == "" {
		folderID = nil
	}
	if folderID != nil {
		if _, err := s.folders.GetByID(ctx, *folderID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: папка %s", ErrNotFound, *folderID)
			}
			return nil, fmt.Errorf("получение папки: %w", err)
		}
	}

	created := make([]*model.FileRecord, 0, len(uploads))
	for _, u := range uploads {
		record, err := s.uploadOne(ctx, folderID, u)
		if err != nil {
			uploadsTotal.WithLabelValues("error").Inc()
			return created, err
		}
		uploadsTotal.WithLabelValues("ok").Inc()
		uploadBytesTotal.Add(float64(record.Size))
		created = append(created, record)
		s.events.Publish(events.Event{Type: events.FileUploaded, ID: record.ID, FolderID: record.FolderID})
	}
	return created, nil
}

// uploadOne записывает объект и затем его метаданные.
// Если метаданные сохранить не удалось, объект удаляется.
func (s *FileService) uploadOne(ctx context.Context, folderID *string, u Upload) (*model.FileRecord, error) {
	id := uuid.New().String()
	record := &model.FileRecord{
		ID:         id,
		Name:       strings.TrimSpace(u.Name),
		Size:       u.Size,
		UploadedAt: time.Now().UTC(),
		FolderID:   folderID,
	}
	record.ContentType = resolveContentType(u.ContentType, record.Name)
	record.StorageKey = storage.ObjectKey(id, record.Name)

	body, err := u.Open()
	if err != nil {
		return nil, fmt.Errorf("открытие файла %q: %w", u.Name, err)
	}
	defer body.Close()

	if err := s.store.Put(ctx, record.StorageKey, body, record.Size, record.ContentType); err != nil {
		s.logger.Error("Ошибка записи объекта",
			slog.String("file_id", id),
			slog.String("storage_key", record.StorageKey),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: запись файла %q: %w", ErrStorage, u.Name, err)
	}

	if err := s.files.Create(ctx, record); err != nil {
		if delErr := s.store.Delete(ctx, record.StorageKey); delErr != nil {
			s.logger.Warn("Не удалось удалить объект после ошибки сохранения метаданных",
				slog.String("storage_key", record.StorageKey),
				slog.String("error", delErr.Error()),
			)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: папка удалена во время загрузки", ErrNotFound)
		}
		return nil, fmt.Errorf("сохранение метаданных файла %q: %w", u.Name, err)
	}

	s.logger.Info("Файл загружен",
		slog.String("file_id", id),
		slog.String("name", record.Name),
		slog.Int64("size", record.Size),
		slog.String("content_type", record.ContentType),
	)
	return record, nil
}

// Get возвращает метаданные файла. Записи неизменяемы и кэшируются.
func (s *FileService) Get(ctx context.Context, fileID string) (*model.FileRecord, error) {
	if f, ok := s.cache.Get(fileID); ok {
		return f, nil
	}
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: файл %s", ErrNotFound, fileID)
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}
	s.cache.Set(fileID, f)
	return f, nil
}

// List возвращает все файлы, новые сверху.
func (s *FileService) List(ctx context.Context) ([]*model.FileRecord, error) {
	files, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка файлов: %w", err)
	}
	return files, nil
}

// TypeCounts возвращает распределение всех файлов по категориям.
func (s *FileService) TypeCounts(ctx context.Context) ([]listing.TypeCount, error) {
	files, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка файлов: %w", err)
	}
	return listing.TypeCounts(files), nil
}

// ContentURL возвращает ссылку на содержимое файла.
// attachment — скачивание, иначе просмотр в браузере.
func (s *FileService) ContentURL(ctx context.Context, fileID string, attachment bool) (string, error) {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return "", err
	}
	u, err := s.store.DownloadURL(ctx, f.StorageKey, f.Name, attachment)
	if err != nil {
		return "", fmt.Errorf("%w: ссылка на файл %s: %w", ErrStorage, fileID, err)
	}
	return u, nil
}

// Delete удаляет объект, затем запись. Ошибка хранилища оставляет
// запись на месте (ErrStorage).
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fileDeletesTotal.WithLabelValues("not_found").Inc()
			return fmt.Errorf("%w: файл %s", ErrNotFound, fileID)
		}
		fileDeletesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("получение файла: %w", err)
	}

	if err := s.store.Delete(ctx, f.StorageKey); err != nil {
		fileDeletesTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error("Ошибка удаления объекта",
			slog.String("file_id", fileID),
			slog.String("storage_key", f.StorageKey),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: удаление файла %s: %w", ErrStorage, fileID, err)
	}

	if err := s.files.Delete(ctx, fileID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		fileDeletesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("удаление записи файла: %w", err)
	}
	fileDeletesTotal.WithLabelValues("ok").Inc()

	s.logger.Info("Файл удалён", slog.String("file_id", fileID))
	s.events.Publish(events.Event{Type: events.FileDeleted, ID: fileID, FolderID: f.FolderID})
	return nil
}

// resolveContentType выбирает MIME-тип: заявленный клиентом, если это
// корректный type/subtype и не application/octet-stream, затем по
// расширению имени, иначе application/octet-stream.
func resolveContentType(declared, name string) string {
	if ct := strings.TrimSpace(declared); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil && mediaType != defaultContentType && isTypeSubtype(mediaType) {
			return ct
		}
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return defaultContentType
}

func isTypeSubtype(mediaType string) bool {
	typ, sub, ok := strings.Cut(mediaType, "/")
	return ok && typ != "" && sub != "" && !strings.Contains(sub, "/")
}
