// Пакет filestore — локальное объектное хранилище на диске.
// Запись через temp файл → fsync → atomic rename, выдача содержимого
// по подписанным ссылкам /objects/{token} с поддержкой Range.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shubhanshu-02/FileShare/internal/storage"
)

// PathPrefix — префикс маршрута выдачи объектов.
const PathPrefix = "/objects/"

// Ошибки filestore.
var (
	// ErrInvalidKey — ключ выходит за пределы каталога данных.
	ErrInvalidKey = errors.New("недопустимый ключ объекта")
	// ErrSizeMismatch — записано не столько байт, сколько ожидалось.
	ErrSizeMismatch = errors.New("размер записанных данных не совпадает с ожидаемым")
)

var bytesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fs_filestore_bytes_written_total",
	Help: "Общее количество байт, записанных в локальное хранилище.",
})

// objectClaims — claims подписанной ссылки на объект.
type objectClaims struct {
	// Filename — имя для Content-Disposition
	Filename string `json:"fn"`
	// Attachment — отдавать как вложение
	Attachment bool `json:"att,omitempty"`
	jwt.RegisteredClaims
}

// FileStore — объектное хранилище в каталоге dataDir.
// Реализует storage.ObjectStore и http.Handler (выдача по ссылкам).
type FileStore struct {
	// dataDir — корневая директория хранения объектов
	dataDir string
	// baseURL — публичный URL сервиса для построения ссылок
	baseURL string
	secret  []byte
	ttl     time.Duration
}

var _ storage.ObjectStore = (*FileStore)(nil)

// New создаёт FileStore. Проверяет и создаёт директорию,
// если она не существует. secret подписывает ссылки, ttl — их срок жизни.
func New(dataDir, baseURL string, secret []byte, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("секрет подписи ссылок не задан")
	}

	return &FileStore{
		dataDir: dataDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		ttl:     ttl,
	}, nil
}

// Put записывает объект на диск.
//
// Паттерн: temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Put(ctx context.Context, key string, r io.Reader, size int64, _ string) error {
	fullPath, err := fs.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("ошибка создания директории объекта: %w", err)
	}

	tmpPath := fullPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	written, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи данных: %w", err)
	}
	if size >= 0 && written != size {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: ожидалось %d, записано %d", ErrSizeMismatch, size, written)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	bytesWrittenTotal.Add(float64(written))
	return nil
}

// Delete удаляет объект с диска. Возвращает nil, если объекта уже нет.
// Пустая директория объекта удаляется вместе с ним.
func (fs *FileStore) Delete(_ context.Context, key string) error {
	fullPath, err := fs.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления объекта %s: %w", key, err)
	}
	// files/{id}/ — удаляем, только если пуста
	_ = os.Remove(filepath.Dir(fullPath))
	return nil
}

// Exists проверяет существование объекта на диске.
func (fs *FileStore) Exists(key string) bool {
	fullPath, err := fs.fullPath(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// DownloadURL возвращает подписанную ссылку {baseURL}/objects/{token}.
func (fs *FileStore) DownloadURL(_ context.Context, key, filename string, attachment bool) (string, error) {
	if _, err := fs.fullPath(key); err != nil {
		return "", err
	}

	now := time.Now()
	claims := objectClaims{
		Filename:   filename,
		Attachment: attachment,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(fs.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fs.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи ссылки: %w", err)
	}
	return fs.baseURL + PathPrefix + url.PathEscape(token), nil
}

// ServeHTTP отдаёт объект по подписанной ссылке.
// Поддерживает Range, If-Modified-Since через http.ServeContent.
func (fs *FileStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, PathPrefix)

	claims := &objectClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return fs.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		http.Error(w, "ссылка недействительна или истекла", http.StatusForbidden)
		return
	}

	fullPath, err := fs.fullPath(claims.Subject)
	if err != nil {
		http.Error(w, "ссылка недействительна", http.StatusForbidden)
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "ошибка чтения объекта", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "ошибка чтения объекта", http.StatusInternalServerError)
		return
	}

	name := claims.Filename
	if name == "" {
		name = filepath.Base(fullPath)
	}
	w.Header().Set("Content-Disposition", storage.ContentDisposition(name, claims.Attachment))
	w.Header().Set("Cache-Control", "private, max-age=0")

	// ServeContent определяет Content-Type по расширению name или по содержимому
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// DataDir возвращает путь к директории данных.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// CheckReady проверяет доступность каталога данных.
// Недоступное хранилище не мешает чтению метаданных, поэтому "degraded".
func (fs *FileStore) CheckReady() (status string, message string) {
	info, err := os.Stat(fs.dataDir)
	if err != nil {
		return "degraded", fmt.Sprintf("каталог данных недоступен: %v", err)
	}
	if !info.IsDir() {
		return "degraded", fmt.Sprintf("%s не является директорией", fs.dataDir)
	}
	return "ok", "каталог данных доступен"
}

// fullPath возвращает абсолютный путь объекта. Ключ обязан быть
// локальным относительным путём внутри dataDir.
func (fs *FileStore) fullPath(key string) (string, error) {
	p := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(fs.dataDir, p), nil
}

// ctxReader прерывает чтение при отмене контекста.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
