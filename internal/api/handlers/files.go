// files.go — обработчики /api/v1/files: загрузка (multipart), список,
// метаданные, ссылка на содержимое, удаление, сводка по типам.
package handlers

import (
	"errors"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	apierrors "github.com/shubhanshu-02/FileShare/internal/api/errors"
	"github.com/shubhanshu-02/FileShare/internal/api/generated"
	"github.com/shubhanshu-02/FileShare/internal/service"
)

const (
	// folderField — поле формы с UUID папки назначения.
	folderField = "folderId"
	// multipartMemory — часть формы, которая держится в памяти; остальное на диске.
	multipartMemory = 32 << 20
)

// UploadFiles — POST /api/v1/files.
// Каждая файловая часть формы (любое имя поля) — отдельный файл.
func (h *APIHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if h.deps.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadSize)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w, "Размер загрузки превышает допустимый")
			return
		}
		apierrors.ValidationError(w, "Ожидается multipart/form-data: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var folderID *string
	if values := r.MultipartForm.Value[folderField]; len(values) > 0 {
		if v := strings.TrimSpace(values[0]); v != "" {
			folderID = &v
		}
	}

	uploads := collectUploads(r.MultipartForm)
	records, err := h.deps.Files.Upload(r.Context(), folderID, uploads)
	if err != nil {
		h.writeServiceError(w, r, err, "Папка не найдена")
		return
	}

	resp := generated.UploadResponse{Files: make([]generated.UploadedFile, 0, len(records))}
	for _, rec := range records {
		resp.Files = append(resp.Files, generated.UploadedFile{Id: parseUUID(rec.ID)})
	}
	writeJSON(w, http.StatusCreated, resp)
}

// collectUploads собирает файловые части формы в порядке имён полей.
func collectUploads(form *multipart.Form) []service.Upload {
	var uploads []service.Upload
	for _, field := range slices.Sorted(maps.Keys(form.File)) {
		for _, fh := range form.File[field] {
			uploads = append(uploads, service.Upload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return uploads
}

// ListFiles — GET /api/v1/files.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.deps.Files.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, generated.FileList{Files: toAPIFiles(files)})
}

// GetFileTypes — GET /api/v1/files/types.
func (h *APIHandler) GetFileTypes(w http.ResponseWriter, r *http.Request) {
	counts, err := h.deps.Files.TypeCounts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	resp := generated.TypeCountList{Types: make([]generated.TypeCount, 0, len(counts))}
	for _, c := range counts {
		resp.Types = append(resp.Types, generated.TypeCount{
			Category: generated.Category(c.Category),
			Label:    c.Label,
			Count:    c.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFile — GET /api/v1/files/{file_id}.
func (h *APIHandler) GetFile(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	f, err := h.deps.Files.Get(r.Context(), fileID.String())
	if err != nil {
		h.writeServiceError(w, r, err, "Файл не найден")
		return
	}
	writeJSON(w, http.StatusOK, toAPIFile(f))
}

// GetFileContent — GET /api/v1/files/{file_id}/content.
// Перенаправляет на ссылку хранилища; download=true — скачивание.
func (h *APIHandler) GetFileContent(w http.ResponseWriter, r *http.Request, fileID generated.FileId, params generated.GetFileContentParams) {
	attachment := params.Download != nil && *params.Download
	h.redirectToContent(w, r, fileID.String(), attachment)
}

// redirectToContent отвечает 302 на временную ссылку содержимого.
func (h *APIHandler) redirectToContent(w http.ResponseWriter, r *http.Request, fileID string, attachment bool) {
	u, err := h.deps.Files.ContentURL(r.Context(), fileID, attachment)
	if err != nil {
		h.writeServiceError(w, r, err, "Файл не найден")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, u, http.StatusFound)
}

// DeleteFile — DELETE /api/v1/files/{file_id}.
func (h *APIHandler) DeleteFile(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	if err := h.deps.Files.Delete(r.Context(), fileID.String()); err != nil {
		h.writeServiceError(w, r, err, "Файл не найден")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
