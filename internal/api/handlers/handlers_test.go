package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/shubhanshu-02/FileShare/internal/api/errors"
	"github.com/shubhanshu-02/FileShare/internal/api/generated"
	"github.com/shubhanshu-02/FileShare/internal/domain/listing"
	"github.com/shubhanshu-02/FileShare/internal/domain/model"
	"github.com/shubhanshu-02/FileShare/internal/service"
	"github.com/shubhanshu-02/FileShare/internal/share"
)

const (
	testFileID   = "0b6f1c5e-3f5a-4a57-9d2e-5a0c3e7e9a01"
	testFolderID = "7d1e6a52-8b4f-4c1e-a3a2-3c9f0e8d2b10"
)

// --- Mock-сервисы ---

type mockFileService struct {
	uploadFn     func(ctx context.Context, folderID *string, uploads []service.Upload) ([]*model.FileRecord, error)
	getFn        func(ctx context.Context, id string) (*model.FileRecord, error)
	listFn       func(ctx context.Context) ([]*model.FileRecord, error)
	typeCountsFn func(ctx context.Context) ([]listing.TypeCount, error)
	contentURLFn func(ctx context.Context, id string, attachment bool) (string, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (m *mockFileService) Upload(ctx context.Context, folderID *string, uploads []service.Upload) ([]*model.FileRecord, error) {
	return m.uploadFn(ctx, folderID, uploads)
}

func (m *mockFileService) Get(ctx context.Context, id string) (*model.FileRecord, error) {
	return m.getFn(ctx, id)
}

func (m *mockFileService) List(ctx context.Context) ([]*model.FileRecord, error) {
	return m.listFn(ctx)
}

func (m *mockFileService) TypeCounts(ctx context.Context) ([]listing.TypeCount, error) {
	return m.typeCountsFn(ctx)
}

func (m *mockFileService) ContentURL(ctx context.Context, id string, attachment bool) (string, error) {
	return m.contentURLFn(ctx, id, attachment)
}

func (m *mockFileService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockFolderService struct {
	createFn func(ctx context.Context, name string, parentID *string) (*model.FolderRecord, error)
	getFn    func(ctx context.Context, id string) (*service.FolderDetails, error)
	listFn   func(ctx context.Context) ([]*model.FolderRecord, error)
	deleteFn func(ctx context.Context, id string) (*service.DeleteResult, error)
}

func (m *mockFolderService) Create(ctx context.Context, name string, parentID *string) (*model.FolderRecord, error) {
	return m.createFn(ctx, name, parentID)
}

func (m *mockFolderService) Get(ctx context.Context, id string) (*service.FolderDetails, error) {
	return m.getFn(ctx, id)
}

func (m *mockFolderService) List(ctx context.Context) ([]*model.FolderRecord, error) {
	return m.listFn(ctx)
}

func (m *mockFolderService) DeleteRecursive(ctx context.Context, id string) (*service.DeleteResult, error) {
	return m.deleteFn(ctx, id)
}

type mockBrowseService struct {
	browseFn func(ctx context.Context, params service.BrowseParams) (*service.BrowseResult, error)
}

func (m *mockBrowseService) Browse(ctx context.Context, params service.BrowseParams) (*service.BrowseResult, error) {
	return m.browseFn(ctx, params)
}

type stubChecker struct{ status, message string }

func (c stubChecker) CheckReady() (string, string) { return c.status, c.message }

// --- Окружение ---

type testDeps struct {
	files   *mockFileService
	folders *mockFolderService
	browse  *mockBrowseService
	issuer  *share.Issuer
	router  http.Handler
}

func newTestRouter(t *testing.T, maxUpload int64) *testDeps {
	t.Helper()
	issuer, err := share.NewIssuer([]byte("secret"), time.Hour, "http://files.test")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	d := &testDeps{
		files:   &mockFileService{},
		folders: &mockFolderService{},
		browse:  &mockBrowseService{},
		issuer:  issuer,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewAPIHandler(Deps{
		Health:  NewHealthHandler(stubChecker{status: "ok"}, nil),
		Files:   d.files,
		Folders: d.folders,
		Browse:  d.browse,
		Share:   issuer,
		Events: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusSwitchingProtocols)
		}),
		Spec:          []byte("openapi: 3.0.3\n"),
		MaxUploadSize: maxUpload,
	}, logger)

	d.router = generated.HandlerWithOptions(h, generated.ChiServerOptions{
		BaseRouter: chi.NewRouter(),
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			apierrors.ValidationError(w, err.Error())
		},
	})
	return d
}

func (d *testDeps) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body generated.Error
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON ошибки: %v (%s)", err, rec.Body.String())
	}
	return body.Error.Code
}

func testFile() *model.FileRecord {
	folder := testFolderID
	return &model.FileRecord{
		ID:          testFileID,
		Name:        "photo.png",
		Size:        42,
		ContentType: "image/png",
		StorageKey:  "files/" + testFileID + "/photo.png",
		UploadedAt:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		FolderID:    &folder,
	}
}

// multipartBody формирует тело формы с файлами и полем folderId.
func multipartBody(t *testing.T, folderID string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folderID != "" {
		_ = mw.WriteField("folderId", folderID)
	}
	i := 0
	for name, content := range files {
		fw, err := mw.CreateFormFile(fmt.Sprintf("file-%d", i), name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = io.WriteString(fw, content)
		i++
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

// --- Тесты: файлы ---

func TestUploadFiles_Success(t *testing.T) {
	d := newTestRouter(t, 1<<20)
	var gotFolder *string
	var gotNames []string
	var gotContent []string
	d.files.uploadFn = func(_ context.Context, folderID *string, uploads []service.Upload) ([]*model.FileRecord, error) {
		gotFolder = folderID
		var out []*model.FileRecord
		for i, u := range uploads {
			gotNames = append(gotNames, u.Name)
			rc, err := u.Open()
			if err != nil {
				return nil, err
			}
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			gotContent = append(gotContent, string(data))
			out = append(out, &model.FileRecord{ID: fmt.Sprintf("00000000-0000-4000-8000-00000000000%d", i)})
		}
		return out, nil
	}

	body, ct := multipartBody(t, testFolderID, map[string]string{"a.txt": "aaa", "b.txt": "bb"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", ct)
	rec := d.do(t, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var resp generated.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if len(resp.Files) != 2 {
		t.Errorf("files = %d, ожидается 2", len(resp.Files))
	}
	if gotFolder == nil || *gotFolder != testFolderID {
		t.Errorf("folderID = %v", gotFolder)
	}
	if len(gotNames) != 2 || strings.Join(gotContent, "") == "" {
		t.Errorf("имена = %v, содержимое = %v", gotNames, gotContent)
	}
}

func TestUploadFiles_Errors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"нет файлов", fmt.Errorf("%w: не передано ни одного файла", service.ErrValidation), http.StatusBadRequest, apierrors.CodeValidationError},
		{"нет папки", fmt.Errorf("%w: папка", service.ErrNotFound), http.StatusNotFound, apierrors.CodeNotFound},
		{"хранилище", fmt.Errorf("%w: bucket", service.ErrStorage), http.StatusBadGateway, apierrors.CodeStorageUnavailable},
		{"прочее", errors.New("db down"), http.StatusInternalServerError, apierrors.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestRouter(t, 1<<20)
			d.files.uploadFn = func(context.Context, *string, []service.Upload) ([]*model.FileRecord, error) {
				return nil, tt.serviceErr
			}
			body, ct := multipartBody(t, "", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
			req.Header.Set("Content-Type", ct)
			rec := d.do(t, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус = %d, ожидается %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, ожидается %q", code, tt.wantCode)
			}
		})
	}
}

func TestUploadFiles_TooLarge(t *testing.T) {
	d := newTestRouter(t, 512)
	d.files.uploadFn = func(context.Context, *string, []service.Upload) ([]*model.FileRecord, error) {
		t.Fatal("сервис не должен вызываться")
		return nil, nil
	}
	body, ct := multipartBody(t, "", map[string]string{"big.bin": strings.Repeat("x", 8192)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", ct)
	rec := d.do(t, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("статус = %d, ожидается 413", rec.Code)
	}
}

func TestUploadFiles_NotMultipart(t *testing.T) {
	d := newTestRouter(t, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := d.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидается 400", rec.Code)
	}
}

func TestGetFile(t *testing.T) {
	d := newTestRouter(t, 0)
	d.files.getFn = func(_ context.Context, id string) (*model.FileRecord, error) {
		if id != testFileID {
			return nil, service.ErrNotFound
		}
		return testFile(), nil
	}

	rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+testFileID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	var f generated.File
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if f.Id.String() != testFileID || f.Name != "photo.png" || f.Size != 42 {
		t.Errorf("file = %+v", f)
	}
	if f.Category == nil || *f.Category != generated.CategoryImage {
		t.Errorf("category = %v", f.Category)
	}
	if f.FolderId == nil || f.FolderId.String() != testFolderID {
		t.Errorf("folder_id = %v", f.FolderId)
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+testFolderID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("неизвестный файл: статус = %d, ожидается 404", rec.Code)
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("некорректный UUID: статус = %d, ожидается 400", rec.Code)
	}
}

func TestGetFile_RootFolderIsNull(t *testing.T) {
	d := newTestRouter(t, 0)
	d.files.getFn = func(context.Context, string) (*model.FileRecord, error) {
		f := testFile()
		f.FolderID = nil
		return f, nil
	}
	rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+testFileID, nil))
	if !strings.Contains(rec.Body.String(), `"folder_id":null`) {
		t.Errorf("ожидается folder_id: null, тело: %s", rec.Body.String())
	}
}

func TestGetFileContent_Redirect(t *testing.T) {
	d := newTestRouter(t, 0)
	var gotAttachment bool
	d.files.contentURLFn = func(_ context.Context, _ string, attachment bool) (string, error) {
		gotAttachment = attachment
		return "https://storage.test/obj?sig=1", nil
	}

	rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+testFileID+"/content?download=true", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("статус = %d, ожидается 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://storage.test/obj?sig=1" {
		t.Errorf("Location = %q", loc)
	}
	if !gotAttachment {
		t.Error("download=true должен запрашивать attachment")
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+testFileID+"/content", nil))
	if rec.Code != http.StatusFound || gotAttachment {
		t.Errorf("без download: статус %d, attachment %v", rec.Code, gotAttachment)
	}
}

func TestDeleteFile(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusNoContent},
		{"не найден", service.ErrNotFound, http.StatusNotFound},
		{"хранилище", fmt.Errorf("%w: timeout", service.ErrStorage), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestRouter(t, 0)
			d.files.deleteFn = func(context.Context, string) error { return tt.err }
			rec := d.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+testFileID, nil))
			if rec.Code != tt.want {
				t.Errorf("статус = %d, ожидается %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListFilesAndTypes(t *testing.T) {
	d := newTestRouter(t, 0)
	d.files.listFn = func(context.Context) ([]*model.FileRecord, error) {
		return []*model.FileRecord{testFile()}, nil
	}
	d.files.typeCountsFn = func(context.Context) ([]listing.TypeCount, error) {
		return []listing.TypeCount{{Category: listing.CategoryImage, Label: "Images", Count: 1}}, nil
	}

	rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))
	var list generated.FileList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list.Files) != 1 {
		t.Errorf("список = %s (%v)", rec.Body.String(), err)
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files/types", nil))
	var types generated.TypeCountList
	if err := json.Unmarshal(rec.Body.Bytes(), &types); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if len(types.Types) != 1 || types.Types[0].Label != "Images" || types.Types[0].Count != 1 {
		t.Errorf("types = %+v", types)
	}
}

// --- Тесты: папки ---

func TestCreateFolder(t *testing.T) {
	d := newTestRouter(t, 0)
	var gotParent *string
	d.folders.createFn = func(_ context.Context, name string, parentID *string) (*model.FolderRecord, error) {
		if name == "" {
			return nil, fmt.Errorf("%w: имя папки не может быть пустым", service.ErrValidation)
		}
		gotParent = parentID
		return &model.FolderRecord{ID: testFolderID, Name: name, ParentID: parentID, CreatedAt: time.Now()}, nil
	}

	body := `{"name":"docs","parent_id":"` + testFileID + `"}`
	rec := d.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/folders", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	if gotParent == nil || *gotParent != testFileID {
		t.Errorf("parentID = %v", gotParent)
	}
	var folder generated.Folder
	if err := json.Unmarshal(rec.Body.Bytes(), &folder); err != nil || folder.Id.String() != testFolderID {
		t.Errorf("ответ = %s", rec.Body.String())
	}

	rec = d.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/folders", strings.NewReader(`{"name":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("пустое имя: статус = %d", rec.Code)
	}

	rec = d.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/folders", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("битый JSON: статус = %d", rec.Code)
	}
}

func TestGetFolder(t *testing.T) {
	d := newTestRouter(t, 0)
	root := &model.FolderRecord{ID: testFileID, Name: "root"}
	parent := testFileID
	child := &model.FolderRecord{ID: testFolderID, Name: "child", ParentID: &parent}
	d.folders.getFn = func(context.Context, string) (*service.FolderDetails, error) {
		return &service.FolderDetails{Folder: child, Path: []*model.FolderRecord{root, child}}, nil
	}

	rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/folders/"+testFolderID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	var details generated.FolderDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if details.Folder.Name != "child" || len(details.Path) != 2 || details.Path[0].Name != "root" {
		t.Errorf("details = %+v", details)
	}
}

func TestDeleteFolder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"ok", nil, http.StatusNoContent, ""},
		{"не найдена", fmt.Errorf("%w: папка", service.ErrNotFound), http.StatusNotFound, apierrors.CodeNotFound},
		{"хранилище", fmt.Errorf("%w: файл", service.ErrStorage), http.StatusBadGateway, apierrors.CodeStorageUnavailable},
		{"конфликт", fmt.Errorf("%w: новые данные", service.ErrConflict), http.StatusConflict, apierrors.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestRouter(t, 0)
			var gotID string
			d.folders.deleteFn = func(_ context.Context, id string) (*service.DeleteResult, error) {
				gotID = id
				if tt.err != nil {
					return nil, tt.err
				}
				return &service.DeleteResult{Folders: 2, Files: 3}, nil
			}
			rec := d.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/folders/"+testFolderID, nil))
			if rec.Code != tt.want {
				t.Fatalf("статус = %d, ожидается %d", rec.Code, tt.want)
			}
			if gotID != testFolderID {
				t.Errorf("id = %q", gotID)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, ожидается %q", code, tt.wantCode)
				}
			}
		})
	}
}

// --- Тесты: просмотр ---

func TestBrowse_Params(t *testing.T) {
	d := newTestRouter(t, 0)
	var got service.BrowseParams
	d.browse.browseFn = func(_ context.Context, params service.BrowseParams) (*service.BrowseResult, error) {
		got = params
		return &service.BrowseResult{Files: []*model.FileRecord{testFile()}}, nil
	}

	target := "/api/v1/browse?folder_id=" + testFolderID + "&q=photo&type=image&type=video&sort=size-desc"
	rec := d.do(t, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	if got.FolderID == nil || *got.FolderID != testFolderID {
		t.Errorf("FolderID = %v", got.FolderID)
	}
	if got.Search != "photo" || got.Sort != "size-desc" {
		t.Errorf("params = %+v", got)
	}
	if len(got.Types) != 2 || got.Types[0] != "image" || got.Types[1] != "video" {
		t.Errorf("Types = %v", got.Types)
	}

	var resp generated.BrowseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if resp.Folders == nil || resp.Path == nil || len(resp.Files) != 1 {
		t.Errorf("пустые группы должны быть [], ответ: %s", rec.Body.String())
	}
}

func TestBrowse_RootAndErrors(t *testing.T) {
	d := newTestRouter(t, 0)
	d.browse.browseFn = func(_ context.Context, params service.BrowseParams) (*service.BrowseResult, error) {
		if params.FolderID != nil {
			return nil, service.ErrNotFound
		}
		if params.Sort == "bogus" {
			return nil, fmt.Errorf("%w: сортировка", service.ErrValidation)
		}
		return &service.BrowseResult{}, nil
	}

	if rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/browse", nil)); rec.Code != http.StatusOK {
		t.Errorf("корень: статус = %d", rec.Code)
	}
	if rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/browse?folder_id="+testFolderID, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("нет папки: статус = %d", rec.Code)
	}
	if rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/browse?sort=bogus", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("плохая сортировка: статус = %d", rec.Code)
	}
	if rec := d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/browse?folder_id=xyz", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("некорректный folder_id: статус = %d", rec.Code)
	}
}

// --- Тесты: ссылки ---

func TestShareLink_CreateAndResolve(t *testing.T) {
	d := newTestRouter(t, 0)
	d.files.getFn = func(context.Context, string) (*model.FileRecord, error) { return testFile(), nil }
	var resolvedID string
	d.files.contentURLFn = func(_ context.Context, id string, _ bool) (string, error) {
		resolvedID = id
		return "https://storage.test/shared", nil
	}

	rec := d.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/files/"+testFileID+"/share", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var link generated.ShareLink
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.HasPrefix(link.Url, "http://files.test/s/") {
		t.Fatalf("url = %q", link.Url)
	}

	path := strings.TrimPrefix(link.Url, "http://files.test")
	rec = d.do(t, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("переход: статус = %d", rec.Code)
	}
	if resolvedID != testFileID {
		t.Errorf("resolved = %q", resolvedID)
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/s/garbage", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("плохой токен: статус = %d, ожидается 404", rec.Code)
	}
}

func TestShareLink_UnknownFile(t *testing.T) {
	d := newTestRouter(t, 0)
	d.files.getFn = func(context.Context, string) (*model.FileRecord, error) { return nil, service.ErrNotFound }

	rec := d.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/files/"+testFileID+"/share", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("статус = %d, ожидается 404", rec.Code)
	}
}

// --- Тесты: health и служебные ---

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name    string
		pg      ReadinessChecker
		storage ReadinessChecker
		want    int
		status  string
	}{
		{"ok", stubChecker{status: "ok"}, nil, http.StatusOK, "ok"},
		{"хранилище degraded", stubChecker{status: "ok"}, stubChecker{status: "degraded"}, http.StatusOK, "degraded"},
		{"pg fail", stubChecker{status: "fail", message: "timeout"}, stubChecker{status: "ok"}, http.StatusServiceUnavailable, "fail"},
		{"без pg", nil, nil, http.StatusServiceUnavailable, "fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pg, tt.storage)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.want {
				t.Errorf("статус = %d, ожидается %d", rec.Code, tt.want)
			}
			var resp healthReadyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("JSON: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("status = %q, ожидается %q", resp.Status, tt.status)
			}
			if (tt.storage == nil) != (resp.Checks.Storage == nil) {
				t.Errorf("storage check = %+v", resp.Checks.Storage)
			}
		})
	}
}

func TestServiceEndpoints(t *testing.T) {
	d := newTestRouter(t, 0)

	rec := d.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"service":"fileshare"`) {
		t.Errorf("live: %d %s", rec.Code, rec.Body.String())
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/api/openapi.yaml", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "openapi:") {
		t.Errorf("openapi: %d %s", rec.Code, rec.Body.String())
	}

	rec = d.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusSwitchingProtocols {
		t.Errorf("events: статус = %d", rec.Code)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"ok", "ok"}, "ok"},
		{[]string{"ok", "degraded"}, "degraded"},
		{[]string{"degraded", "fail"}, "fail"},
		{nil, "ok"},
	}
	for _, tt := range tests {
		if got := overallStatus(tt.in...); got != tt.want {
			t.Errorf("overallStatus(%v) = %q, ожидается %q", tt.in, got, tt.want)
		}
	}
}
