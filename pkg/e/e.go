package e

import (
	"errors"
	"fmt"
)

// Классы ошибок движка синхронизации. Задача, упавшая из-за одной из них,
// сохраняет класс отдельным полем статуса, чтобы было видно причину.
var (
	// ErrTransport — ресурс недоступен либо не-2xx ответ. Изнутри не ретраится.
	ErrTransport = fmt.Errorf("transport error")
	// ErrParse — некорректный XML/CSV либо повреждённый zip-контейнер.
	ErrParse = fmt.Errorf("parse error")
	// ErrStore — нарушение индекса или потеря соединения с хранилищем.
	ErrStore = fmt.Errorf("store error")
	// ErrItemInvalid — в позиции отсутствует обязательное поле. Не фатальна:
	// позиция пропускается, задача продолжается.
	ErrItemInvalid = fmt.Errorf("invalid item")
)

var (
	// Ошибки жизненного цикла задач
	ErrJobNotFound     = fmt.Errorf("job not found")
	ErrJobAlreadyFinal = fmt.Errorf("job is already in a terminal state")
	ErrCodeRequired    = fmt.Errorf("product code is required")
	ErrEmptyFeedURL    = fmt.Errorf("empty catalog feed url")

	// 400 Bad Request
	ErrStatusBadRequest    = fmt.Errorf("bad request")
	ErrUnknownJobKind      = fmt.Errorf("unknown job kind")
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapKind помечает ошибку классом из таксономии движка, сохраняя обе в цепочке.
func WrapKind(kind error, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

// KindOf возвращает класс ошибки из таксономии движка либо nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrTransport, ErrParse, ErrStore, ErrItemInvalid} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
