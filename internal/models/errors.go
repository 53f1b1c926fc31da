package models

import (
	"errors"
	"fmt"
)

// Виды ошибок предметной области. Конкретные ошибки оборачивают один из видов,
// поэтому проверка выполняется через errors.Is, а текст ошибки остаётся
// пригодным для показа клиенту.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Message возвращает текст ошибки предметной области без префиксов,
// добавленных при оборачивании. Для прочих ошибок возвращается err.Error().
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return err.Error()
}

// Validation возвращает ошибку вида ErrValidation с указанным сообщением.
func Validation(format string, args ...any) error {
	return newKindError(ErrValidation, format, args...)
}

// Unauthorized возвращает ошибку вида ErrUnauthorized.
func Unauthorized(format string, args ...any) error {
	return newKindError(ErrUnauthorized, format, args...)
}

// Forbidden возвращает ошибку вида ErrForbidden.
func Forbidden(format string, args ...any) error {
	return newKindError(ErrForbidden, format, args...)
}

// NotFound возвращает ошибку вида ErrNotFound.
func NotFound(format string, args ...any) error {
	return newKindError(ErrNotFound, format, args...)
}

// Conflict возвращает ошибку вида ErrConflict.
func Conflict(format string, args ...any) error {
	return newKindError(ErrConflict, format, args...)
}
