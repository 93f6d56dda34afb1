package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is an *AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

const (
	CodeInvalidInput       = "VAL_001"
	CodeInsufficientFunds  = "PAY_001"
	CodeDuplicateReference = "PAY_002"
	CodeCheckoutInProgress = "PAY_003"
	CodeUnauthorized       = "AUTH_001"
	CodeForbidden          = "AUTH_002"
	CodeInvalidSignature   = "SEC_001"
	CodeTokenExpired       = "SEC_002"
	CodeNotFound           = "RES_001"
	CodeRateLimited        = "RATE_001"
	CodeInternal           = "SYS_001"
)

// ---- Validation (VAL) ----

// Validation returns a field-level InvalidInput error.
func Validation(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// ---- Payments (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance", http.StatusBadRequest)
}

func ErrDuplicateReference(referenceCode string) *AppError {
	return New(CodeDuplicateReference, fmt.Sprintf("reference code %q already exists", referenceCode), http.StatusConflict)
}

// ErrCheckoutInProgress is returned while a checkout with the same idempotency key is still running.
func ErrCheckoutInProgress() *AppError {
	return New(CodeCheckoutInProgress, "A checkout with this idempotency key is in progress", http.StatusConflict)
}

// ---- Identity (AUTH) ----

func ErrUnauthorized() *AppError {
	return New(CodeUnauthorized, "Unauthorized", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Operator access required", http.StatusForbidden)
}

// ---- Signatures & tokens (SEC) ----

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid signature", http.StatusUnauthorized)
}

func ErrTokenExpired() *AppError {
	return New(CodeTokenExpired, "Token expired", http.StatusUnauthorized)
}

// ---- Resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence wraps a store failure. The message sent to clients stays generic.
func ErrPersistence(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps any other internal failure as SYS_001.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
