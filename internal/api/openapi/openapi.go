// Пакет openapi — встроенный OpenAPI-контракт и middleware проверки
// входящих запросов по нему (kin-openapi).
package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	apierrors "github.com/shubhanshu-02/FileShare/internal/api/errors"
)

//go:embed openapi.yaml
var spec []byte

// Spec возвращает исходный YAML контракта.
func Spec() []byte {
	return spec
}

// Load разбирает и проверяет встроенный контракт.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("разбор OpenAPI: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("проверка OpenAPI: %w", err)
	}
	return doc, nil
}

// Validator возвращает middleware, проверяющий параметры и JSON-тела
// запросов к путям с префиксом prefix. Тела multipart/form-data не
// проверяются: файлы читаются потоком в обработчике. Запросы к путям,
// отсутствующим в контракте, пропускаются без проверки.
func Validator(doc *openapi3.T, prefix string, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("маршрутизатор OpenAPI: %w", err)
	}
	log := logger.With(slog.String("component", "openapi_validator"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if !errors.Is(err, routers.ErrPathNotFound) && !errors.Is(err, routers.ErrMethodNotAllowed) {
					log.Debug("Маршрут не найден в контракте", slog.String("error", err.Error()))
				}
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					ExcludeRequestBody: isMultipart(r),
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				log.Debug("Запрос не прошёл проверку контракта",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				apierrors.ValidationError(w, validationMessage(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// isMultipart — тело запроса multipart/*.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// validationMessage формирует краткое сообщение об ошибке для клиента.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			return fmt.Sprintf("Некорректный параметр %s: %s", reqErr.Parameter.Name, reasonOf(reqErr))
		case reqErr.RequestBody != nil:
			return "Некорректное тело запроса: " + reasonOf(reqErr)
		}
	}
	return "Некорректный запрос: " + err.Error()
}

// reasonOf возвращает причину ошибки без служебных деталей схемы.
func reasonOf(reqErr *openapi3filter.RequestError) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		return schemaErr.Reason
	}
	if reqErr.Reason != "" {
		return reqErr.Reason
	}
	if reqErr.Err != nil {
		return reqErr.Err.Error()
	}
	return "не соответствует контракту"
}
