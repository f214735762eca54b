package api

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest      = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized    = &AppError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrNotFound        = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrConflict        = &AppError{Code: http.StatusConflict, Message: "conflict"}
	ErrInternalServer  = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
	ErrValidation      = &AppError{Code: http.StatusBadRequest, Message: "validation error"}
	ErrMessageTooLarge = &AppError{Code: http.StatusRequestEntityTooLarge, Message: "input too long (>1000 words)"}
	ErrQuotaExceeded   = &AppError{Code: http.StatusTooManyRequests, Message: "chat temporarily disabled: rate limit reached"}
	ErrUpstream        = &AppError{Code: http.StatusBadGateway, Message: "completion service unavailable"}
)

func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: msg}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONErrorMessage(w, appErr.Code, appErr.Message)
		return
	}
	JSONErrorMessage(w, http.StatusInternalServerError, "internal server error")
}
