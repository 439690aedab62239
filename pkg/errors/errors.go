package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeInvalidReq        = "INVALID_REQUEST"
	ErrCodeGenerationAPI     = "GENERATION_API_ERROR"
	ErrCodeEmptyResponse     = "EMPTY_RESPONSE"
	ErrCodeNoImage           = "NO_IMAGE"
	ErrCodeNoImagesGenerated = "NO_IMAGES_GENERATED"
	ErrCodeDecodeFailed      = "DECODE_FAILED"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeBusy              = "BUSY"
	ErrCodeNotFound          = "NOT_FOUND"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is reports whether the outermost AppError in err's chain carries code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Reason returns the human-readable part of err: the AppError message
// followed by its cause, without the code prefix.
func Reason(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Cause != nil {
		return fmt.Sprintf("%s: %s", appErr.Message, Reason(appErr.Cause))
	}
	return appErr.Message
}
