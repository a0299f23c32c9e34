package services

import (
	"backoffice/models"
	"errors"
	"fmt"
)

// ServiceError тип ошибки бизнес-логики. Контроллеры сопоставляют его с HTTP-статусом.
type ServiceError string

func (e ServiceError) Error() string {
	return string(e)
}

const (
	ErrNotFound     ServiceError = "не найдено"
	ErrForbidden    ServiceError = "недостаточно прав"
	ErrValidation   ServiceError = "ошибка валидации"
	ErrConflict     ServiceError = "конфликт состояния"
	ErrInvalidLogin ServiceError = "неверные учетные данные"
)

// notFound оборачивает ErrNotFound с описанием сущности
func notFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s #%d", ErrNotFound, entity, id)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// IsServiceError сообщает, что err получен из бизнес-логики, а не из инфраструктуры
func IsServiceError(err error) bool {
	var se ServiceError
	return errors.As(err, &se)
}

// Actor пользователь, выполняющий операцию
type Actor struct {
	ID    uint
	Email string
	Role  models.Role
}

// Is проверяет, что роль актора входит в список
func (a Actor) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
