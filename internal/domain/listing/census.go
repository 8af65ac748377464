package listing

import (
	"slices"

	"github.com/shubhanshu-02/FileShare/internal/domain/model"
)

// TypeCount — количество файлов одной категории.
type TypeCount struct {
	Category Category
	Label    string
	Count    int
}

// TypeCounts считает файлы по категориям по всему набору (без учёта папки).
// Категории без файлов не включаются. Сортировка — по убыванию количества,
// при равенстве — в порядке AllCategories.
func TypeCounts(files []*model.FileRecord) []TypeCount {
	counts := make(map[Category]int, len(AllCategories))
	for _, f := range files {
		counts[CategoryOf(f.ContentType)]++
	}

	result := make([]TypeCount, 0, len(counts))
	for _, c := range AllCategories {
		if n := counts[c]; n > 0 {
			result = append(result, TypeCount{Category: c, Label: c.Label(), Count: n})
		}
	}

	slices.SortStableFunc(result, func(a, b TypeCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return a.Category.order() - b.Category.order()
	})
	return result
}

// TotalSize — суммарный размер файлов в байтах.
func TotalSize(files []*model.FileRecord) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
