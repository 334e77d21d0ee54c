package search

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQueryBounds - параметры запроса вне допустимых границ.
	ErrInvalidQueryBounds = errors.New("invalid query bounds")

	// ErrRetrievalUnavailable - векторный индекс недоступен или вернул некорректные данные.
	// Наружу не возвращается: ретривер переходит на каталог.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)

// BoundsError указывает на конкретное поле запроса с недопустимым значением.
type BoundsError struct {
	Field  string
	Reason string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *BoundsError) Unwrap() error {
	return ErrInvalidQueryBounds
}

func boundsErr(field, format string, args ...interface{}) error {
	return &BoundsError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
