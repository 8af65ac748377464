// Точка входа FileShare — сервис хранения и обмена файлами.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// выбирает объектное хранилище (локальный диск или GCS), создаёт сервисный
// слой и API handlers, запускает фоновые задачи (статистика, topologymetrics)
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/shubhanshu-02/FileShare/internal/api/handlers"
	"github.com/shubhanshu-02/FileShare/internal/api/middleware"
	"github.com/shubhanshu-02/FileShare/internal/api/openapi"
	"github.com/shubhanshu-02/FileShare/internal/config"
	"github.com/shubhanshu-02/FileShare/internal/database"
	"github.com/shubhanshu-02/FileShare/internal/events"
	"github.com/shubhanshu-02/FileShare/internal/repository"
	"github.com/shubhanshu-02/FileShare/internal/server"
	"github.com/shubhanshu-02/FileShare/internal/service"
	"github.com/shubhanshu-02/FileShare/internal/share"
	"github.com/shubhanshu-02/FileShare/internal/storage"
	"github.com/shubhanshu-02/FileShare/internal/storage/filestore"
	"github.com/shubhanshu-02/FileShare/internal/storage/gcsstore"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("FileShare запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Секрет подписи ссылок
	secret := []byte(cfg.ShareSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.Error("Ошибка генерации секрета", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Warn("FS_SHARE_SECRET не задан, выданные ссылки станут недействительны после рестарта")
	}

	// 6. Объектное хранилище
	var (
		store          storage.ObjectStore
		storageChecker handlers.ReadinessChecker
		objectsHandler http.Handler
	)
	switch cfg.StorageBackend {
	case config.StorageBackendGCS:
		gcs, gcsErr := gcsstore.New(ctx, gcsstore.Config{
			Bucket:            cfg.GCSBucket,
			CredentialsFile:   cfg.GCSCredentialsFile,
			SigningEmail:      cfg.GCSSigningEmail,
			SigningPrivateKey: cfg.GCSSigningPrivateKey,
			URLTTL:            cfg.SignedURLTTL,
		}, logger)
		if gcsErr != nil {
			logger.Error("Ошибка инициализации GCS", slog.String("error", gcsErr.Error()))
			os.Exit(1)
		}
		defer gcs.Close()
		store, storageChecker = gcs, gcs
		logger.Info("Объектное хранилище: GCS", slog.String("bucket", gcs.Bucket()))
	default:
		fs, fsErr := filestore.New(cfg.StorageDataDir, cfg.PublicURL, deriveKey(secret, "objects"), cfg.SignedURLTTL)
		if fsErr != nil {
			logger.Error("Ошибка инициализации локального хранилища", slog.String("error", fsErr.Error()))
			os.Exit(1)
		}
		store, storageChecker, objectsHandler = fs, fs, fs
		logger.Info("Объектное хранилище: локальный диск", slog.String("data_dir", fs.DataDir()))
	}

	// 7. Repositories
	folderRepo := repository.NewFolderRepository(pool)
	fileRepo := repository.NewFileRepository(pool)

	// 8. Services
	cache := service.NewCacheService(cfg.CacheMaxSize, cfg.CacheTTL)
	hub := events.NewHub(logger)
	// Кэш получает события раньше WebSocket-клиентов
	publisher := events.Fanout{cache, hub}

	folderSvc := service.NewFolderService(folderRepo, fileRepo, store, publisher, logger)
	fileSvc := service.NewFileService(fileRepo, folderRepo, store, cache, publisher, logger)
	browseSvc := service.NewBrowseService(folderRepo, fileRepo, logger)

	issuer, err := share.NewIssuer(deriveKey(secret, "share"), cfg.ShareTTL, cfg.PublicURL)
	if err != nil {
		logger.Error("Ошибка создания выпуска ссылок", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Фоновая статистика хранилища
	statsSvc, err := service.NewStatsService(fileRepo, folderRepo, cfg.StatsSchedule, logger)
	if err != nil {
		logger.Error("Ошибка создания сервиса статистики", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := statsSvc.Start(ctx); err != nil {
		logger.Warn("Первичный сбор статистики не выполнен", slog.String("error", err.Error()))
	}

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL + хранилище)
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthParams{
		ServiceID:        "fileshare",
		Group:            cfg.DephealthGroup,
		DB:               pgDB,
		PgConnURL:        cfg.DatabaseURL(),
		StorageHealthURL: cfg.StorageHealthURL,
		CheckInterval:    cfg.DephealthCheckInterval,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 11. Health и API handler
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), storageChecker)
	apiHandler := handlers.NewAPIHandler(handlers.Deps{
		Health:        healthHandler,
		Files:         fileSvc,
		Folders:       folderSvc,
		Browse:        browseSvc,
		Share:         issuer,
		Events:        hub,
		Spec:          openapi.Spec(),
		MaxUploadSize: cfg.MaxUploadSize,
	}, logger)

	// 12. Валидация запросов по OpenAPI-контракту
	doc, err := openapi.Load()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI-контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validator, err := openapi.Validator(doc, "/api/", logger)
	if err != nil {
		logger.Error("Ошибка создания валидатора OpenAPI", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 13. HTTP-сервер (блокирует до сигнала завершения)
	srv := server.New(cfg, logger, apiHandler, objectsHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		validator,
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
	}

	// 14. Остановка фоновых задач
	hub.Close()
	statsSvc.Stop()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("FileShare остановлен")
}

// deriveKey выводит из общего секрета ключ подписи для назначения purpose.
func deriveKey(secret []byte, purpose string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}
