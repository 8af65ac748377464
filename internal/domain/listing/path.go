package listing

import "github.com/shubhanshu-02/FileShare/internal/domain/model"

// Path возвращает цепочку папок от корня до folderID включительно (breadcrumb).
// Если folderID не найден — пустой срез. Цикл в данных обрывает обход.
func Path(folders []*model.FolderRecord, folderID string) []*model.FolderRecord {
	byID := make(map[string]*model.FolderRecord, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	var reversed []*model.FolderRecord
	seen := make(map[string]bool)
	current, ok := byID[folderID]
	for ok && !seen[current.ID] {
		seen[current.ID] = true
		reversed = append(reversed, current)
		if current.ParentID == nil {
			break
		}
		current, ok = byID[*current.ParentID]
	}

	path := make([]*model.FolderRecord, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}
