// Пакет storage — абстракция объектного хранилища содержимого файлов.
// Реализации: filestore (локальный диск) и gcsstore (Google Cloud Storage).
package storage

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
)

// ObjectStore — объектное хранилище, адресуемое по ключу.
// Put успешен только после надёжной записи. Delete идемпотентен:
// отсутствующий объект не является ошибкой.
type ObjectStore interface {
	// Put записывает содержимое объекта. size — ожидаемый размер или -1.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete удаляет объект.
	Delete(ctx context.Context, key string) error
	// DownloadURL возвращает временную ссылку на объект.
	// attachment — отдавать как вложение (скачивание), иначе inline (просмотр).
	DownloadURL(ctx context.Context, key, filename string, attachment bool) (string, error)
}

// ObjectKey формирует ключ объекта: files/{id}/{name}.
// Имя очищается от разделителей пути.
func ObjectKey(fileID, filename string) string {
	return path.Join("files", fileID, SafeName(filename))
}

// SafeName оставляет от имени файла только последний компонент пути.
func SafeName(filename string) string {
	name := strings.ReplaceAll(filename, `\`, "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "file"
	}
	return name
}

// ContentDisposition формирует значение заголовка Content-Disposition.
// Не-ASCII имена кодируются по RFC 2231.
func ContentDisposition(filename string, attachment bool) string {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	v := mime.FormatMediaType(disposition, map[string]string{"filename": SafeName(filename)})
	if v == "" {
		return disposition
	}
	return v
}
