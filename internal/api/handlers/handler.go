// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет health и бизнес-обработчики, ошибки сервисного слоя
// переводятся в HTTP-статусы в writeServiceError.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/shubhanshu-02/FileShare/internal/api/errors"
	"github.com/shubhanshu-02/FileShare/internal/api/generated"
	"github.com/shubhanshu-02/FileShare/internal/domain/listing"
	"github.com/shubhanshu-02/FileShare/internal/domain/model"
	"github.com/shubhanshu-02/FileShare/internal/service"
	"github.com/shubhanshu-02/FileShare/internal/share"
)

// FileService — операции над файлами (service.FileService).
type FileService interface {
	Upload(ctx context.Context, folderID *string, uploads []service.Upload) ([]*model.FileRecord, error)
	Get(ctx context.Context, fileID string) (*model.FileRecord, error)
	List(ctx context.Context) ([]*model.FileRecord, error)
	TypeCounts(ctx context.Context) ([]listing.TypeCount, error)
	ContentURL(ctx context.Context, fileID string, attachment bool) (string, error)
	Delete(ctx context.Context, fileID string) error
}

// FolderService — операции над папками (service.FolderService).
type FolderService interface {
	Create(ctx context.Context, name string, parentID *string) (*model.FolderRecord, error)
	Get(ctx context.Context, folderID string) (*service.FolderDetails, error)
	List(ctx context.Context) ([]*model.FolderRecord, error)
	DeleteRecursive(ctx context.Context, folderID string) (*service.DeleteResult, error)
}

// BrowseService — построение представления папки (service.BrowseService).
type BrowseService interface {
	Browse(ctx context.Context, params service.BrowseParams) (*service.BrowseResult, error)
}

// ShareIssuer — выдача и проверка публичных ссылок (share.Issuer).
type ShareIssuer interface {
	Create(fileID string) (*share.Link, error)
	Resolve(token string) (string, error)
}

// Deps — зависимости APIHandler.
type Deps struct {
	Health  *HealthHandler
	Files   FileService
	Folders FolderService
	Browse  BrowseService
	Share   ShareIssuer
	// Events — WebSocket-поток событий изменения
	Events http.Handler
	// Spec — YAML OpenAPI-контракта для GET /api/openapi.yaml
	Spec []byte
	// MaxUploadSize — предельный размер тела запроса загрузки в байтах
	MaxUploadSize int64
}

// APIHandler — основной обработчик API FileShare.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	deps   Deps
	logger *slog.Logger
}

var _ generated.ServerInterface = (*APIHandler)(nil)

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(deps Deps, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		deps:   deps,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness-проверка.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.deps.Health.HealthLive(w, r)
}

// HealthReady — readiness-проверка.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.deps.Health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.deps.Health.GetMetrics(w, r)
}

// GetOpenAPISpec отдаёт OpenAPI-контракт.
func (h *APIHandler) GetOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.deps.Spec)
}

// GetEvents — WebSocket-поток событий изменения.
func (h *APIHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	h.deps.Events.ServeHTTP(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ:
// ErrNotFound → 404, ErrValidation → 400, ErrConflict → 409,
// ErrStorage → 502, остальное → 500 (с записью в лог).
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFoundMsg)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrStorage):
		h.logger.Error("Объектное хранилище недоступно",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.StorageUnavailable(w, "Объектное хранилище недоступно, повторите попытку позже")
	default:
		h.logger.Error("Внутренняя ошибка",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

// parseUUID преобразует строку в openapi_types.UUID (нулевой UUID при ошибке).
func parseUUID(s string) openapi_types.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return openapi_types.UUID{}
	}
	return id
}

// uuidPtr преобразует nullable-ссылку в *openapi_types.UUID.
func uuidPtr(s *string) *openapi_types.UUID {
	if s == nil {
		return nil
	}
	id := parseUUID(*s)
	return &id
}

// stringPtr — обратное преобразование nullable UUID.
func stringPtr(id *openapi_types.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// toAPIFile — доменная модель → API-тип File.
func toAPIFile(f *model.FileRecord) generated.File {
	category := generated.Category(listing.CategoryOf(f.ContentType))
	return generated.File{
		Id:          parseUUID(f.ID),
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
		Category:    &category,
		UploadedAt:  f.UploadedAt,
		FolderId:    uuidPtr(f.FolderID),
	}
}

func toAPIFiles(files []*model.FileRecord) []generated.File {
	out := make([]generated.File, 0, len(files))
	for _, f := range files {
		out = append(out, toAPIFile(f))
	}
	return out
}

// toAPIFolder — доменная модель → API-тип Folder.
func toAPIFolder(f *model.FolderRecord) generated.Folder {
	return generated.Folder{
		Id:        parseUUID(f.ID),
		Name:      f.Name,
		ParentId:  uuidPtr(f.ParentID),
		CreatedAt: f.CreatedAt,
	}
}

func toAPIFolders(folders []*model.FolderRecord) []generated.Folder {
	out := make([]generated.Folder, 0, len(folders))
	for _, f := range folders {
		out = append(out, toAPIFolder(f))
	}
	return out
}
