package model

import "time"

// FolderRecord — папка в дереве папок.
// Папки образуют лес: у корневых ParentID == nil.
type FolderRecord struct {
	// ID — UUID папки
	ID string
	// Name — имя папки
	Name string
	// ParentID — UUID родительской папки; nil — корень
	ParentID *string
	// CreatedAt — время создания
	CreatedAt time.Time
}

// InFolder проверяет, является ли папка прямым потомком parentID.
func (f *FolderRecord) InFolder(parentID *string) bool {
	return sameScope(f.ParentID, parentID)
}

// sameScope сравнивает два nullable-идентификатора: nil == nil.
func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
