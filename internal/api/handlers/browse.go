// browse.go — обработчик GET /api/v1/browse.
package handlers

import (
	"net/http"

	"github.com/shubhanshu-02/FileShare/internal/api/generated"
	"github.com/shubhanshu-02/FileShare/internal/service"
)

// Browse — содержимое папки (folder_id не задан — корень) с поиском,
// фильтром по категориям и сортировкой.
func (h *APIHandler) Browse(w http.ResponseWriter, r *http.Request, params generated.BrowseParams) {
	req := service.BrowseParams{FolderID: stringPtr(params.FolderId)}
	if params.Q != nil {
		req.Search = *params.Q
	}
	if params.Type != nil {
		for _, c := range *params.Type {
			req.Types = append(req.Types, string(c))
		}
	}
	if params.Sort != nil {
		req.Sort = string(*params.Sort)
	}

	res, err := h.deps.Browse.Browse(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Папка не найдена")
		return
	}
	writeJSON(w, http.StatusOK, generated.BrowseResponse{
		Folders: toAPIFolders(res.Folders),
		Files:   toAPIFiles(res.Files),
		Path:    toAPIFolders(res.Path),
	})
}
