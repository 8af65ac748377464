package listing

import (
	"fmt"
	"strings"
)

// SortKey — ключ сортировки представления.
type SortKey string

// Ключи сортировки.
const (
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
	SortDateAsc  SortKey = "date-asc"
	SortDateDesc SortKey = "date-desc"
	SortSizeAsc  SortKey = "size-asc"
	SortSizeDesc SortKey = "size-desc"
)

// DefaultSort — ключ по умолчанию (новые сверху).
const DefaultSort = SortDateDesc

// ParseSortKey разбирает ключ сортировки. Пустая строка — DefaultSort.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return DefaultSort, nil
	case SortNameAsc, SortNameDesc, SortDateAsc, SortDateDesc, SortSizeAsc, SortSizeDesc:
		return k, nil
	default:
		return "", fmt.Errorf("недопустимый ключ сортировки %q", s)
	}
}

// appliesToFolders — size-ключи к папкам не применяются.
func (k SortKey) appliesToFolders() bool {
	return k != SortSizeAsc && k != SortSizeDesc
}
