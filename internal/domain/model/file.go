// Пакет model — доменные модели FileShare.
// FileRecord и FolderRecord — маппинг таблиц files и folders.
package model

import "time"

// FileRecord — метаданные загруженного файла.
// Неизменяема после создания, удаляется только физически (без soft delete).
type FileRecord struct {
	// ID — UUID файла (генерируется при загрузке)
	ID string
	// Name — оригинальное имя файла
	Name string
	// Size — размер в байтах
	Size int64
	// ContentType — MIME-тип файла
	ContentType string
	// StorageKey — ключ объекта в хранилище (files/{id}/{name})
	StorageKey string
	// UploadedAt — время загрузки
	UploadedAt time.Time
	// FolderID — UUID папки; nil — корень
	FolderID *string
}

// InFolder проверяет, лежит ли файл непосредственно в папке folderID.
// nil означает корень.
func (f *FileRecord) InFolder(folderID *string) bool {
	return sameScope(f.FolderID, folderID)
}
