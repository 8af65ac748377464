package generated

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Liveness-проверка
	// (GET /health/live)
	HealthLive(w http.ResponseWriter, r *http.Request)
	// Readiness-проверка
	// (GET /health/ready)
	HealthReady(w http.ResponseWriter, r *http.Request)
	// Prometheus metrics
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// OpenAPI document
	// (GET /api/openapi.yaml)
	GetOpenAPISpec(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/files)
	ListFiles(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/files)
	UploadFiles(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/files/types)
	GetFileTypes(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/files/{file_id})
	GetFile(w http.ResponseWriter, r *http.Request, fileId FileId)
	// (DELETE /api/v1/files/{file_id})
	DeleteFile(w http.ResponseWriter, r *http.Request, fileId FileId)
	// (GET /api/v1/files/{file_id}/content)
	GetFileContent(w http.ResponseWriter, r *http.Request, fileId FileId, params GetFileContentParams)
	// (POST /api/v1/files/{file_id}/share)
	CreateShareLink(w http.ResponseWriter, r *http.Request, fileId FileId)
	// (GET /s/{token})
	ResolveShareLink(w http.ResponseWriter, r *http.Request, token string)
	// (GET /api/v1/folders)
	ListFolders(w http.ResponseWriter, r *http.Request)
	// (POST /api/v1/folders)
	CreateFolder(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/folders/{folder_id})
	GetFolder(w http.ResponseWriter, r *http.Request, folderId FolderId)
	// (DELETE /api/v1/folders/{folder_id})
	DeleteFolder(w http.ResponseWriter, r *http.Request, folderId FolderId)
	// (GET /api/v1/browse)
	Browse(w http.ResponseWriter, r *http.Request, params BrowseParams)
	// (GET /api/v1/events)
	GetEvents(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// bindUUIDPath разбирает UUID из параметра пути.
func (siw *ServerInterfaceWrapper) bindUUIDPath(w http.ResponseWriter, r *http.Request, name string, dest *FileId) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// HealthLive operation middleware
func (siw *ServerInterfaceWrapper) HealthLive(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthLive)
}

// HealthReady operation middleware
func (siw *ServerInterfaceWrapper) HealthReady(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthReady)
}

// GetMetrics operation middleware
func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetMetrics)
}

// GetOpenAPISpec operation middleware
func (siw *ServerInterfaceWrapper) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetOpenAPISpec)
}

// ListFiles operation middleware
func (siw *ServerInterfaceWrapper) ListFiles(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListFiles)
}

// UploadFiles operation middleware
func (siw *ServerInterfaceWrapper) UploadFiles(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.UploadFiles)
}

// GetFileTypes operation middleware
func (siw *ServerInterfaceWrapper) GetFileTypes(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetFileTypes)
}

// GetFile operation middleware
func (siw *ServerInterfaceWrapper) GetFile(w http.ResponseWriter, r *http.Request) {
	var fileId FileId
	if !siw.bindUUIDPath(w, r, "file_id", &fileId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetFile(w, r, fileId)
	})
}

// DeleteFile operation middleware
func (siw *ServerInterfaceWrapper) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var fileId FileId
	if !siw.bindUUIDPath(w, r, "file_id", &fileId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteFile(w, r, fileId)
	})
}

// GetFileContent operation middleware
func (siw *ServerInterfaceWrapper) GetFileContent(w http.ResponseWriter, r *http.Request) {
	var fileId FileId
	if !siw.bindUUIDPath(w, r, "file_id", &fileId) {
		return
	}

	var params GetFileContentParams
	if err := runtime.BindQueryParameter("form", true, false, "download", r.URL.Query(), &params.Download); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "download", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetFileContent(w, r, fileId, params)
	})
}

// CreateShareLink operation middleware
func (siw *ServerInterfaceWrapper) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	var fileId FileId
	if !siw.bindUUIDPath(w, r, "file_id", &fileId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateShareLink(w, r, fileId)
	})
}

// ResolveShareLink operation middleware
func (siw *ServerInterfaceWrapper) ResolveShareLink(w http.ResponseWriter, r *http.Request) {
	var token string
	err := runtime.BindStyledParameterWithOptions("simple", "token", chi.URLParam(r, "token"), &token,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "token", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ResolveShareLink(w, r, token)
	})
}

// ListFolders operation middleware
func (siw *ServerInterfaceWrapper) ListFolders(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListFolders)
}

// CreateFolder operation middleware
func (siw *ServerInterfaceWrapper) CreateFolder(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateFolder)
}

// GetFolder operation middleware
func (siw *ServerInterfaceWrapper) GetFolder(w http.ResponseWriter, r *http.Request) {
	var folderId FolderId
	if !siw.bindUUIDPath(w, r, "folder_id", &folderId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetFolder(w, r, folderId)
	})
}

// DeleteFolder operation middleware
func (siw *ServerInterfaceWrapper) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	var folderId FolderId
	if !siw.bindUUIDPath(w, r, "folder_id", &folderId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteFolder(w, r, folderId)
	})
}

// Browse operation middleware
func (siw *ServerInterfaceWrapper) Browse(w http.ResponseWriter, r *http.Request) {
	var params BrowseParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "folder_id", query, &params.FolderId); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "folder_id", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "type", query, &params.Type); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "type", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", query, &params.Sort); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "sort", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Browse(w, r, params)
	})
}

// GetEvents operation middleware
func (siw *ServerInterfaceWrapper) GetEvents(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetEvents)
}

// InvalidParamFormatError — параметр не удалось разобрать.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/live", wrapper.HealthLive)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/ready", wrapper.HealthReady)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.GetMetrics)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/openapi.yaml", wrapper.GetOpenAPISpec)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/files", wrapper.ListFiles)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/v1/files", wrapper.UploadFiles)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/files/types", wrapper.GetFileTypes)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/files/{file_id}", wrapper.GetFile)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/api/v1/files/{file_id}", wrapper.DeleteFile)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/files/{file_id}/content", wrapper.GetFileContent)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/v1/files/{file_id}/share", wrapper.CreateShareLink)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/s/{token}", wrapper.ResolveShareLink)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/folders", wrapper.ListFolders)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/v1/folders", wrapper.CreateFolder)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/folders/{folder_id}", wrapper.GetFolder)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/api/v1/folders/{folder_id}", wrapper.DeleteFolder)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/browse", wrapper.Browse)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/events", wrapper.GetEvents)
	})

	return r
}
