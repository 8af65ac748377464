// Пакет config — загрузка и валидация конфигурации FileShare
// из переменных окружения (префикс FS_).
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Бэкенды объектного хранилища.
const (
	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

// Config содержит все параметры конфигурации FileShare.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Публичный базовый URL сервиса (для ссылок на объекты и share-ссылок)
	PublicURL string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Объектное хранилище ---

	// Бэкенд: local или gcs
	StorageBackend string
	// Каталог данных для local-бэкенда
	StorageDataDir string
	// Максимальный размер multipart-запроса загрузки (байт)
	MaxUploadSize int64

	// GCS: bucket, файл учётных данных, параметры подписи URL
	GCSBucket            string
	GCSCredentialsFile   string
	GCSSigningEmail      string
	GCSSigningPrivateKey string
	// Время жизни подписанной ссылки на объект
	SignedURLTTL time.Duration

	// --- Кэш метаданных ---

	CacheMaxSize int
	CacheTTL     time.Duration

	// --- Share-ссылки ---

	// Секрет подписи share-токенов (HS256). Пусто — генерируется при старте.
	ShareSecret string
	// Время жизни share-ссылки
	ShareTTL time.Duration

	// --- Статистика ---

	// Cron-расписание пересчёта статистики хранилища
	StatsSchedule string

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
	// URL health endpoint внешнего хранилища (опционально)
	StorageHealthURL string
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
//
//nolint:funlen,gocyclo // линейная загрузка большого числа переменных
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("FS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("FS_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("FS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("FS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("FS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.PublicURL = strings.TrimRight(getEnvDefault("FS_PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	if u, parseErr := url.Parse(cfg.PublicURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("FS_PUBLIC_URL: некорректный URL %q", cfg.PublicURL)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("FS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FS_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("FS_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("FS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FS_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("FS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FS_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	if cfg.DBHost, err = getEnvRequired("FS_DB_HOST"); err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("FS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("FS_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("FS_DB_NAME"); err != nil {
		return nil, err
	}
	if cfg.DBUser, err = getEnvRequired("FS_DB_USER"); err != nil {
		return nil, err
	}
	if cfg.DBPassword, err = getEnvRequired("FS_DB_PASSWORD"); err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("FS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("FS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Объектное хранилище ---

	cfg.StorageBackend = strings.ToLower(getEnvDefault("FS_STORAGE_BACKEND", StorageBackendLocal))
	switch cfg.StorageBackend {
	case StorageBackendLocal:
		cfg.StorageDataDir = getEnvDefault("FS_STORAGE_DATA_DIR", "./data")
	case StorageBackendGCS:
		if cfg.GCSBucket, err = getEnvRequired("FS_GCS_BUCKET"); err != nil {
			return nil, err
		}
		cfg.GCSCredentialsFile = os.Getenv("FS_GCS_CREDENTIALS_FILE")
		cfg.GCSSigningEmail = os.Getenv("FS_GCS_SIGNING_EMAIL")
		cfg.GCSSigningPrivateKey = os.Getenv("FS_GCS_SIGNING_PRIVATE_KEY")
		if (cfg.GCSSigningEmail == "") != (cfg.GCSSigningPrivateKey == "") {
			return nil, fmt.Errorf("FS_GCS_SIGNING_EMAIL и FS_GCS_SIGNING_PRIVATE_KEY задаются вместе")
		}
	default:
		return nil, fmt.Errorf("FS_STORAGE_BACKEND: недопустимое значение %q, допустимые: local, gcs", cfg.StorageBackend)
	}

	cfg.SignedURLTTL, err = getEnvDurationPositive("FS_SIGNED_URL_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("FS_SIGNED_URL_TTL: %w", err)
	}

	maxUpload, err := getEnvInt("FS_MAX_UPLOAD_SIZE", 100<<20)
	if err != nil {
		return nil, fmt.Errorf("FS_MAX_UPLOAD_SIZE: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("FS_MAX_UPLOAD_SIZE: значение должно быть > 0")
	}
	cfg.MaxUploadSize = int64(maxUpload)

	// --- Кэш ---

	cfg.CacheMaxSize, err = getEnvInt("FS_CACHE_MAX_SIZE", 10000)
	if err != nil {
		return nil, fmt.Errorf("FS_CACHE_MAX_SIZE: %w", err)
	}
	if cfg.CacheMaxSize < 1 {
		return nil, fmt.Errorf("FS_CACHE_MAX_SIZE: значение должно быть >= 1")
	}
	cfg.CacheTTL, err = getEnvDurationPositive("FS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("FS_CACHE_TTL: %w", err)
	}

	// --- Share-ссылки ---

	cfg.ShareSecret = os.Getenv("FS_SHARE_SECRET")
	cfg.ShareTTL, err = getEnvDurationPositive("FS_SHARE_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("FS_SHARE_TTL: %w", err)
	}

	// --- Статистика ---

	cfg.StatsSchedule = getEnvDefault("FS_STATS_SCHEDULE", "@every 5m")

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("FS_DEPHEALTH_GROUP", "fileshare")
	cfg.DephealthCheckInterval, err = getEnvDurationPositive("FS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.StorageHealthURL = os.Getenv("FS_STORAGE_HEALTH_URL")

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без учётных данных (для лейблов метрик).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// MigrateURL возвращает URL для golang-migrate (схема pgx5).
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationPositive — как getEnvDuration, но значение должно быть > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
