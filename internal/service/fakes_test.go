package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shubhanshu-02/FileShare/internal/domain/model"
	"github.com/shubhanshu-02/FileShare/internal/events"
	"github.com/shubhanshu-02/FileShare/internal/repository"
)

// --- In-memory хранилище метаданных ---

// memDB — общая in-memory БД для fake-репозиториев с проверкой ссылок,
// как у внешних ключей PostgreSQL.
type memDB struct {
	mu      sync.Mutex
	folders []*model.FolderRecord
	files   []*model.FileRecord
}

func (db *memDB) folderIdx(id string) int {
	return slices.IndexFunc(db.folders, func(f *model.FolderRecord) bool { return f.ID == id })
}

func (db *memDB) fileIdx(id string) int {
	return slices.IndexFunc(db.files, func(f *model.FileRecord) bool { return f.ID == id })
}

func (db *memDB) hasFolder(id string) bool {
	return db.folderIdx(id) >= 0
}

// memFolderRepo — fake FolderRepository. Поля *Fn переопределяют поведение.
type memFolderRepo struct {
	db           *memDB
	deleteFn     func(ctx context.Context, id string) error
	deleted      []string
	listAllCalls int
}

func (r *memFolderRepo) GetByID(_ context.Context, id string) (*model.FolderRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if i := r.db.folderIdx(id); i >= 0 {
		return r.db.folders[i], nil
	}
	return nil, repository.ErrNotFound
}

func (r *memFolderRepo) ListByParent(_ context.Context, parentID *string) ([]*model.FolderRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.FolderRecord
	for _, f := range r.db.folders {
		if f.InFolder(parentID) {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b *model.FolderRecord) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memFolderRepo) ListAll(_ context.Context) ([]*model.FolderRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.listAllCalls++
	out := slices.Clone(r.db.folders)
	slices.SortStableFunc(out, func(a, b *model.FolderRecord) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memFolderRepo) Create(_ context.Context, f *model.FolderRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if f.ParentID != nil && !r.db.hasFolder(*f.ParentID) {
		return repository.ErrNotFound
	}
	r.db.folders = append(r.db.folders, f)
	return nil
}

func (r *memFolderRepo) Delete(ctx context.Context, id string) error {
	if r.deleteFn != nil {
		if err := r.deleteFn(ctx, id); err != nil {
			return err
		}
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.folderIdx(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	for _, f := range r.db.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return repository.ErrConflict
		}
	}
	for _, f := range r.db.files {
		if f.FolderID != nil && *f.FolderID == id {
			return repository.ErrConflict
		}
	}
	r.db.folders = slices.Delete(r.db.folders, i, i+1)
	r.deleted = append(r.deleted, id)
	return nil
}

// memFileRepo — fake FileRepository.
type memFileRepo struct {
	db        *memDB
	createFn  func(ctx context.Context, f *model.FileRecord) error
	getCalls  int
	listCalls int
}

func (r *memFileRepo) GetByID(_ context.Context, id string) (*model.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.getCalls++
	if i := r.db.fileIdx(id); i >= 0 {
		return r.db.files[i], nil
	}
	return nil, repository.ErrNotFound
}

func (r *memFileRepo) ListByFolder(_ context.Context, folderID *string) ([]*model.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.FileRecord
	for _, f := range r.db.files {
		if f.InFolder(folderID) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFileRepo) ListByFolders(_ context.Context, folderIDs []string) ([]*model.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.listCalls++
	var out []*model.FileRecord
	for _, f := range r.db.files {
		if f.FolderID != nil && slices.Contains(folderIDs, *f.FolderID) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFileRepo) ListAll(_ context.Context) ([]*model.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Clone(r.db.files), nil
}

func (r *memFileRepo) Create(ctx context.Context, f *model.FileRecord) error {
	if r.createFn != nil {
		if err := r.createFn(ctx, f); err != nil {
			return err
		}
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if f.FolderID != nil && !r.db.hasFolder(*f.FolderID) {
		return repository.ErrNotFound
	}
	r.db.files = append(r.db.files, f)
	return nil
}

func (r *memFileRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.fileIdx(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.db.files = slices.Delete(r.db.files, i, i+1)
	return nil
}

// --- In-memory объектное хранилище ---

// memStore — fake ObjectStore. Поля *Fn переопределяют поведение.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	putFn    func(key string) error
	deleteFn func(key string) error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if s.putFn != nil {
		if err := s.putFn(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	if s.deleteFn != nil {
		if err := s.deleteFn(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStore) DownloadURL(_ context.Context, key, filename string, attachment bool) (string, error) {
	u := "https://objects.test/" + key + "?name=" + filename
	if attachment {
		u += "&download=1"
	}
	return u, nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// --- Получатель событий ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// --- Окружение ---

type testEnv struct {
	db        *memDB
	folders   *memFolderRepo
	files     *memFileRepo
	store     *memStore
	cache     *CacheService
	publisher *recordingPublisher
	folderSvc *FolderService
	fileSvc   *FileService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := &memDB{}
	env := &testEnv{
		db:        db,
		folders:   &memFolderRepo{db: db},
		files:     &memFileRepo{db: db},
		store:     newMemStore(),
		cache:     NewCacheService(100, time.Minute),
		publisher: &recordingPublisher{},
	}
	publisher := events.Fanout{env.cache, env.publisher}
	env.folderSvc = NewFolderService(env.folders, env.files, env.store, publisher, testLogger())
	env.fileSvc = NewFileService(env.files, env.folders, env.store, env.cache, publisher, testLogger())
	return env
}

// addFolder добавляет папку напрямую в БД.
func (e *testEnv) addFolder(id, name string, parent *string) {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	e.db.folders = append(e.db.folders, &model.FolderRecord{
		ID: id, Name: name, ParentID: parent, CreatedAt: time.Now().UTC(),
	})
}

// addFile добавляет файл в БД и объект в хранилище.
func (e *testEnv) addFile(id, name string, folder *string) *model.FileRecord {
	f := &model.FileRecord{
		ID:          id,
		Name:        name,
		Size:        int64(len(name)),
		ContentType: "text/plain",
		StorageKey:  "files/" + id + "/" + name,
		UploadedAt:  time.Now().UTC(),
		FolderID:    folder,
	}
	e.db.mu.Lock()
	e.db.files = append(e.db.files, f)
	e.db.mu.Unlock()
	e.store.mu.Lock()
	e.store.objects[f.StorageKey] = []byte(name)
	e.store.mu.Unlock()
	return f
}

func ptr(s string) *string { return &s }
