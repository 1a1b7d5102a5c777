package signal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("signal not found")
	ErrUnauthenticated   = errors.New("no current user")
	ErrForbidden         = errors.New("action not allowed for this user")
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrNotDelivered — транспорт ответил success=false.
	ErrNotDelivered = errors.New("notification not delivered")
)

// ValidationError отклоняет действие до любых изменений.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError оборачивает ошибку хранилища.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError — ошибка отправки в чат. Наверх не пробрасывается, только пишется в outcome.
type NotificationError struct {
	Event string
	Err   error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s: %v", e.Event, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
