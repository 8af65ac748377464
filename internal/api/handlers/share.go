// share.go — публичные ссылки на файлы: выдача и переход по ссылке.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/shubhanshu-02/FileShare/internal/api/errors"
	"github.com/shubhanshu-02/FileShare/internal/api/generated"
)

// CreateShareLink — POST /api/v1/files/{file_id}/share.
func (h *APIHandler) CreateShareLink(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	f, err := h.deps.Files.Get(r.Context(), fileID.String())
	if err != nil {
		h.writeServiceError(w, r, err, "Файл не найден")
		return
	}

	link, err := h.deps.Share.Create(f.ID)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, generated.ShareLink{
		Url:       link.URL,
		ExpiresAt: link.ExpiresAt,
	})
}

// ResolveShareLink — GET /s/{token}. Недействительная или истёкшая
// ссылка неотличима от удалённого файла (404).
func (h *APIHandler) ResolveShareLink(w http.ResponseWriter, r *http.Request, token string) {
	fileID, err := h.deps.Share.Resolve(token)
	if err != nil {
		h.logger.Debug("Недействительная ссылка", slog.String("error", err.Error()))
		apierrors.NotFound(w, "Ссылка недействительна или истекла")
		return
	}
	h.redirectToContent(w, r, fileID, false)
}
