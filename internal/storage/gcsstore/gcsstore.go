// Пакет gcsstore — объектное хранилище в Google Cloud Storage.
// Скачивание — через V4 signed URL с переопределением Content-Disposition.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	objstore "github.com/shubhanshu-02/FileShare/internal/storage"
)

// readyTimeout — таймаут проверки готовности bucket.
const readyTimeout = 3 * time.Second

// Config — параметры подключения к GCS.
type Config struct {
	// Bucket — имя bucket
	Bucket string
	// CredentialsFile — JSON service account; пусто — Application Default Credentials
	CredentialsFile string
	// SigningEmail и SigningPrivateKey — явные параметры подписи URL.
	// Пусто — подпись через учётные данные клиента.
	SigningEmail      string
	SigningPrivateKey string
	// URLTTL — время жизни подписанной ссылки
	URLTTL time.Duration
}

// Store — реализация storage.ObjectStore поверх GCS.
type Store struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	bucketName string
	signEmail  string
	signKey    []byte
	ttl        time.Duration
	logger     *slog.Logger
}

var _ objstore.ObjectStore = (*Store)(nil)

// New создаёт клиент GCS и Store.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Store, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента GCS: %w", err)
	}
	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient создаёт Store поверх готового клиента.
func NewWithClient(client *storage.Client, cfg Config, logger *slog.Logger) *Store {
	s := &Store{
		client:     client,
		bucket:     client.Bucket(cfg.Bucket),
		bucketName: cfg.Bucket,
		signEmail:  cfg.SigningEmail,
		ttl:        cfg.URLTTL,
		logger:     logger.With(slog.String("component", "gcsstore")),
	}
	if cfg.SigningPrivateKey != "" {
		// Ключ из переменной окружения приходит с литеральными \n
		s.signKey = []byte(strings.ReplaceAll(cfg.SigningPrivateKey, `\n`, "\n"))
	}
	return s
}

// Put загружает объект. Успех — только после закрытия writer без ошибок.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.ContentDisposition = objstore.ContentDisposition(path.Base(key), false)
	if size >= 0 && size < int64(w.ChunkSize) {
		// Небольшие объекты — одним запросом
		w.ChunkSize = 0
	}

	written, err := io.Copy(w, r)
	if err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("ошибка загрузки объекта %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ошибка завершения загрузки объекта %s: %w", key, err)
	}
	if size >= 0 && written != size {
		s.logger.Warn("Размер загруженного объекта отличается от заявленного",
			slog.String("key", key),
			slog.Int64("expected", size),
			slog.Int64("written", written),
		)
	}
	return nil
}

// Delete удаляет объект. Отсутствующий объект — не ошибка.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("ошибка удаления объекта %s: %w", key, err)
	}
	return nil
}

// signedURLExpiry возвращает момент истечения ссылки. SDK вычисляет
// X-Goog-Expires от собственного времени подписи и отбрасывает дробную
// часть секунды, поэтому к TTL добавляется полсекунды.
func signedURLExpiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl + time.Second/2)
}

// DownloadURL генерирует V4 signed URL с response-content-disposition.
func (s *Store) DownloadURL(_ context.Context, key, filename string, attachment bool) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: signedURLExpiry(time.Now(), s.ttl),
		QueryParameters: url.Values{
			"response-content-disposition": {objstore.ContentDisposition(filename, attachment)},
		},
	}
	if s.signEmail != "" {
		opts.GoogleAccessID = s.signEmail
		opts.PrivateKey = s.signKey
	}

	u, err := s.bucket.SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи ссылки на %s: %w", key, err)
	}
	return u, nil
}

// CheckReady проверяет доступность bucket через чтение его атрибутов.
func (s *Store) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	if _, err := s.bucket.Attrs(ctx); err != nil {
		return "degraded", fmt.Sprintf("bucket %s недоступен: %v", s.bucketName, err)
	}
	return "ok", "bucket доступен"
}

// Bucket возвращает имя bucket.
func (s *Store) Bucket() string {
	return s.bucketName
}

// Close закрывает клиент GCS.
func (s *Store) Close() error {
	return s.client.Close()
}
