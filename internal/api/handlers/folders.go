// folders.go — обработчики /api/v1/folders: список, создание, просмотр
// с путём и каскадное удаление.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/shubhanshu-02/FileShare/internal/api/errors"
	"github.com/shubhanshu-02/FileShare/internal/api/generated"
)

// ListFolders — GET /api/v1/folders.
func (h *APIHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.deps.Folders.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, generated.FolderList{Folders: toAPIFolders(folders)})
}

// CreateFolder — POST /api/v1/folders.
func (h *APIHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req generated.CreateFolderJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	folder, err := h.deps.Folders.Create(r.Context(), req.Name, stringPtr(req.ParentId))
	if err != nil {
		h.writeServiceError(w, r, err, "Родительская папка не найдена")
		return
	}
	writeJSON(w, http.StatusCreated, toAPIFolder(folder))
}

// GetFolder — GET /api/v1/folders/{folder_id}.
func (h *APIHandler) GetFolder(w http.ResponseWriter, r *http.Request, folderID generated.FolderId) {
	details, err := h.deps.Folders.Get(r.Context(), folderID.String())
	if err != nil {
		h.writeServiceError(w, r, err, "Папка не найдена")
		return
	}
	writeJSON(w, http.StatusOK, generated.FolderDetails{
		Folder: toAPIFolder(details.Folder),
		Path:   toAPIFolders(details.Path),
	})
}

// DeleteFolder — DELETE /api/v1/folders/{folder_id}.
// Удаляет папку со всем содержимым. 502 — хранилище недоступно,
// часть содержимого могла быть удалена.
func (h *APIHandler) DeleteFolder(w http.ResponseWriter, r *http.Request, folderID generated.FolderId) {
	res, err := h.deps.Folders.DeleteRecursive(r.Context(), folderID.String())
	if err != nil {
		h.writeServiceError(w, r, err, "Папка не найдена")
		return
	}
	h.logger.Debug("Папка удалена",
		slog.String("folder_id", folderID.String()),
		slog.Int("folders", res.Folders),
		slog.Int("files", res.Files),
	)
	w.WriteHeader(http.StatusNoContent)
}
