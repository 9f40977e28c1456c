package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios. Messages are the Portuguese
// fallbacks shown to citizens when the underlying cause carries none.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "e-mail ou senha inválidos")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "conta desativada")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "registro não encontrado")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "acesso negado")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "não autenticado")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "registro em conflito")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "dados inválidos")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "erro ao processar a solicitação")
	ErrRateLimited        = New("RATE_LIMIT", http.StatusTooManyRequests, "limite de requisições excedido")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
