package apperror

import "net/http"

// AppError is an error with the status and message shown to the caller.
// Err holds the cause, which is logged but never sent.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	Plain   bool   `json:"-"` // render Message as text/plain
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Forbidden(message string) *AppError {
	e := New(http.StatusForbidden, message, nil)
	e.Plain = true
	return e
}

func MethodNotAllowed(message string) *AppError {
	e := New(http.StatusMethodNotAllowed, message, nil)
	e.Plain = true
	return e
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

func Internal(message string, err error) *AppError {
	return New(http.StatusInternalServerError, message, err)
}
