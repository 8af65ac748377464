package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shubhanshu-02/FileShare/internal/domain/model"
)

// folderColumns — столбцы таблицы folders для SELECT-запросов.
const folderColumns = `id, name, parent_id, created_at`

// FolderRepository — доступ к таблице folders.
type FolderRepository interface {
	// GetByID возвращает папку по UUID или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.FolderRecord, error)
	// ListByParent возвращает прямых потомков parentID (nil — корень), по имени.
	ListByParent(ctx context.Context, parentID *string) ([]*model.FolderRecord, error)
	// ListAll возвращает все папки, по имени.
	ListAll(ctx context.Context) ([]*model.FolderRecord, error)
	// Create создаёт папку. Несуществующий родитель — ErrNotFound.
	Create(ctx context.Context, f *model.FolderRecord) error
	// Delete удаляет папку. ErrNotFound если её нет,
	// ErrConflict если на неё ещё ссылаются файлы или подпапки.
	Delete(ctx context.Context, id string) error
}

type folderRepo struct {
	db DBTX
}

// NewFolderRepository создаёт репозиторий папок.
func NewFolderRepository(db DBTX) FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*model.FolderRecord, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM folders WHERE id = $1`, folderColumns)

	f := &model.FolderRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения папки: %w", err)
	}
	return f, nil
}

func (r *folderRepo) ListByParent(ctx context.Context, parentID *string) ([]*model.FolderRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case parentID != nil && !validID(*parentID):
		return []*model.FolderRecord{}, nil
	case parentID == nil:
		rows, err = r.db.Query(ctx, fmt.Sprintf(
			`SELECT %s FROM folders WHERE parent_id IS NULL ORDER BY name, created_at`, folderColumns))
	default:
		rows, err = r.db.Query(ctx, fmt.Sprintf(
			`SELECT %s FROM folders WHERE parent_id = $1 ORDER BY name, created_at`, folderColumns), *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения подпапок: %w", err)
	}
	return scanFolders(rows)
}

func (r *folderRepo) ListAll(ctx context.Context) ([]*model.FolderRecord, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM folders ORDER BY name, created_at`, folderColumns))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка папок: %w", err)
	}
	return scanFolders(rows)
}

func (r *folderRepo) Create(ctx context.Context, f *model.FolderRecord) error {
	if f.ParentID != nil && !validID(*f.ParentID) {
		return fmt.Errorf("%w: родительская папка не существует", ErrNotFound)
	}

	query := `
		INSERT INTO folders (id, name, parent_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, f.ID, f.Name, f.ParentID, f.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return fmt.Errorf("%w: родительская папка не существует", ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: папка с таким ID уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания папки: %w", err)
	}
	return nil
}

func (r *folderRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: папка не пуста", ErrConflict)
		}
		return fmt.Errorf("ошибка удаления папки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFolders(rows pgx.Rows) ([]*model.FolderRecord, error) {
	defer rows.Close()

	result := make([]*model.FolderRecord, 0)
	for rows.Next() {
		f := &model.FolderRecord{}
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования папки: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}
