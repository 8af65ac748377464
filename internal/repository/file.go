package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shubhanshu-02/FileShare/internal/domain/model"
)

// fileColumns — столбцы таблицы files для SELECT-запросов.
const fileColumns = `id, name, size, content_type, storage_key, uploaded_at, folder_id`

// FileRepository — доступ к таблице files.
type FileRepository interface {
	// GetByID возвращает файл по UUID или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.FileRecord, error)
	// ListByFolder возвращает файлы папки (nil — корень), новые сверху.
	ListByFolder(ctx context.Context, folderID *string) ([]*model.FileRecord, error)
	// ListByFolders возвращает файлы, лежащие в любой из папок folderIDs.
	ListByFolders(ctx context.Context, folderIDs []string) ([]*model.FileRecord, error)
	// ListAll возвращает все файлы, новые сверху.
	ListAll(ctx context.Context) ([]*model.FileRecord, error)
	// Create сохраняет метаданные файла. Несуществующая папка — ErrNotFound.
	Create(ctx context.Context, f *model.FileRecord) error
	// Delete удаляет запись файла или возвращает ErrNotFound.
	Delete(ctx context.Context, id string) error
}

type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, fileColumns)

	f := &model.FileRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.Size, &f.ContentType, &f.StorageKey, &f.UploadedAt, &f.FolderID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) ListByFolder(ctx context.Context, folderID *string) ([]*model.FileRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case folderID != nil && !validID(*folderID):
		return []*model.FileRecord{}, nil
	case folderID == nil:
		rows, err = r.db.Query(ctx, fmt.Sprintf(
			`SELECT %s FROM files WHERE folder_id IS NULL ORDER BY uploaded_at DESC, id`, fileColumns))
	default:
		rows, err = r.db.Query(ctx, fmt.Sprintf(
			`SELECT %s FROM files WHERE folder_id = $1 ORDER BY uploaded_at DESC, id`, fileColumns), *folderID)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения файлов папки: %w", err)
	}
	return scanFiles(rows)
}

func (r *fileRepo) ListByFolders(ctx context.Context, folderIDs []string) ([]*model.FileRecord, error) {
	ids := make([]string, 0, len(folderIDs))
	for _, id := range folderIDs {
		if validID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []*model.FileRecord{}, nil
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM files WHERE folder_id = ANY($1::uuid[]) ORDER BY uploaded_at, id`, fileColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения файлов папок: %w", err)
	}
	return scanFiles(rows)
}

func (r *fileRepo) ListAll(ctx context.Context) ([]*model.FileRecord, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM files ORDER BY uploaded_at DESC, id`, fileColumns))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}
	return scanFiles(rows)
}

func (r *fileRepo) Create(ctx context.Context, f *model.FileRecord) error {
	if f.FolderID != nil && !validID(*f.FolderID) {
		return fmt.Errorf("%w: папка не существует", ErrNotFound)
	}

	query := `
		INSERT INTO files (id, name, size, content_type, storage_key, uploaded_at, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		f.ID, f.Name, f.Size, f.ContentType, f.StorageKey, f.UploadedAt, f.FolderID,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return fmt.Errorf("%w: папка не существует", ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: файл с таким ID или ключом уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFiles(rows pgx.Rows) ([]*model.FileRecord, error) {
	defer rows.Close()

	result := make([]*model.FileRecord, 0)
	for rows.Next() {
		f := &model.FileRecord{}
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Size, &f.ContentType, &f.StorageKey, &f.UploadedAt, &f.FolderID,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}
