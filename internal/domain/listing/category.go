// Пакет listing — чистая логика представления содержимого папки:
// категоризация по MIME-типу, поиск, фильтр по категориям, сортировка,
// сводка по типам и путь (breadcrumb) до папки. Без I/O.
package listing

import (
	"fmt"
	"strings"
)

// Category — категория файла, выводимая из MIME-типа.
type Category string

// Категории файлов. Порядок в AllCategories фиксирован и используется
// для разрешения равенства в сводке по типам.
const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// AllCategories — все категории в порядке отображения.
var AllCategories = []Category{
	CategoryImage,
	CategoryVideo,
	CategoryAudio,
	CategoryDocument,
	CategoryOther,
}

// categoryLabels — подписи категорий для сводки.
var categoryLabels = map[Category]string{
	CategoryImage:    "Images",
	CategoryVideo:    "Videos",
	CategoryAudio:    "Audio",
	CategoryDocument: "Documents",
	CategoryOther:    "Other Files",
}

// documentMarkers — подстроки MIME-типа, означающие документ.
var documentMarkers = []string{"document", "pdf", "sheet", "presentation"}

// CategoryOf возвращает категорию для MIME-типа.
// Правила проверяются по порядку, срабатывает первое подходящее.
// Функция тотальна: любая строка (включая пустую) даёт ровно одну категорию.
func CategoryOf(contentType string) Category {
	t := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(t, "image/"):
		return CategoryImage
	case strings.HasPrefix(t, "video/"):
		return CategoryVideo
	case strings.HasPrefix(t, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(t, "text/"):
		return CategoryDocument
	}

	for _, marker := range documentMarkers {
		if strings.Contains(t, marker) {
			return CategoryDocument
		}
	}
	return CategoryOther
}

// Label возвращает подпись категории.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryOther]
}

// ParseCategory разбирает строковое имя категории.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("неизвестная категория %q, допустимые: image, video, audio, document, other", s)
	}
	return c, nil
}

// order возвращает позицию категории в AllCategories.
func (c Category) order() int {
	for i, cat := range AllCategories {
		if cat == c {
			return i
		}
	}
	return len(AllCategories)
}
