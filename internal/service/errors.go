// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — файл или папка не найдены.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrStorage — ошибка объектного хранилища.
	ErrStorage = errors.New("ошибка объектного хранилища")
	// ErrConflict — состояние изменилось параллельно (например, в удаляемую папку добавили файл).
	ErrConflict = errors.New("конфликт — данные изменены параллельно")
)
