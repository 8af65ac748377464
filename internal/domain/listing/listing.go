package listing

import (
	"slices"
	"strings"

	"github.com/shubhanshu-02/FileShare/internal/domain/model"
)

// Query — параметры построения представления папки.
type Query struct {
	// Scope — UUID текущей папки; nil — корень
	Scope *string
	// Search — подстрока для поиска по имени (без учёта регистра)
	Search string
	// Types — фильтр по категориям файлов; пусто — без фильтра
	Types []Category
	// Sort — ключ сортировки; пусто — DefaultSort
	Sort SortKey
}

// View — результат: папки, затем файлы, каждая группа
// отфильтрована и отсортирована независимо.
type View struct {
	Folders []*model.FolderRecord
	Files   []*model.FileRecord
}

// Build строит представление папки из полного набора файлов и папок.
// Порядок входных срезов считается исходным порядком для стабильной сортировки.
// Входные срезы не изменяются.
func Build(files []*model.FileRecord, folders []*model.FolderRecord, q Query) View {
	sortKey := q.Sort
	if sortKey == "" {
		sortKey = DefaultSort
	}
	needle := strings.ToLower(q.Search)

	view := View{
		Folders: make([]*model.FolderRecord, 0),
		Files:   make([]*model.FileRecord, 0),
	}

	for _, f := range folders {
		if !f.InFolder(q.Scope) {
			continue
		}
		if !matchesSearch(f.Name, needle) {
			continue
		}
		view.Folders = append(view.Folders, f)
	}

	for _, f := range files {
		if !f.InFolder(q.Scope) {
			continue
		}
		if !matchesSearch(f.Name, needle) {
			continue
		}
		if !matchesTypes(f.ContentType, q.Types) {
			continue
		}
		view.Files = append(view.Files, f)
	}

	if sortKey.appliesToFolders() {
		slices.SortStableFunc(view.Folders, folderCmp(sortKey))
	}
	slices.SortStableFunc(view.Files, fileCmp(sortKey))

	return view
}

// matchesSearch — регистронезависимый поиск подстроки. needle уже в нижнем регистре.
func matchesSearch(name, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), needle)
}

// matchesTypes — пустой фильтр пропускает всё.
func matchesTypes(contentType string, types []Category) bool {
	if len(types) == 0 {
		return true
	}
	return slices.Contains(types, CategoryOf(contentType))
}

func folderCmp(key SortKey) func(a, b *model.FolderRecord) int {
	switch key {
	case SortNameAsc:
		return func(a, b *model.FolderRecord) int { return strings.Compare(a.Name, b.Name) }
	case SortNameDesc:
		return func(a, b *model.FolderRecord) int { return strings.Compare(b.Name, a.Name) }
	case SortDateAsc:
		return func(a, b *model.FolderRecord) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b *model.FolderRecord) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

func fileCmp(key SortKey) func(a, b *model.FileRecord) int {
	switch key {
	case SortNameAsc:
		return func(a, b *model.FileRecord) int { return strings.Compare(a.Name, b.Name) }
	case SortNameDesc:
		return func(a, b *model.FileRecord) int { return strings.Compare(b.Name, a.Name) }
	case SortDateAsc:
		return func(a, b *model.FileRecord) int { return a.UploadedAt.Compare(b.UploadedAt) }
	case SortSizeAsc:
		return func(a, b *model.FileRecord) int { return cmpInt64(a.Size, b.Size) }
	case SortSizeDesc:
		return func(a, b *model.FileRecord) int { return cmpInt64(b.Size, a.Size) }
	default:
		return func(a, b *model.FileRecord) int { return b.UploadedAt.Compare(a.UploadedAt) }
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
