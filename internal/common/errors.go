package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes carried by AppError.
const (
	CodeUnavailable      = "UNAVAILABLE"
	CodePageFailure      = "PAGE_FAILURE"
	CodeConversionFailed = "CONVERSION_FAILED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeConfig           = "CONFIG_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.Code classify an AppError anywhere in a wrap chain.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Code), e.Error())
}

func grpcCode(code string) codes.Code {
	switch code {
	case CodeUnavailable:
		return codes.Unavailable
	case CodePageFailure:
		return codes.Aborted
	case CodeInvalidInput, CodeConfig:
		return codes.InvalidArgument
	case CodeConversionFailed:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Common application errors
var (
	ErrUnavailable  = errors.New("dependency unavailable")
	ErrPageFailure  = errors.New("page processing failed")
	ErrConversion   = errors.New("conversion failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("operation not supported by backend")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Unavailable reports a missing library, binary or backend capability.
func Unavailable(message string, cause error) *AppError {
	return NewAppError(CodeUnavailable, message, errors.Join(ErrUnavailable, cause))
}

// InvalidInput reports a usage or options error.
func InvalidInput(message string, cause error) *AppError {
	return NewAppError(CodeInvalidInput, message, errors.Join(ErrInvalidInput, cause))
}

// ConversionFailed reports a document-level failure.
func ConversionFailed(message string, cause error) *AppError {
	return NewAppError(CodeConversionFailed, message, errors.Join(ErrConversion, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// PageError records one page that could not be processed.
type PageError struct {
	Page int // 1-based
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() []error {
	return []error{ErrPageFailure, e.Err}
}

// GRPCStatus classifies page failures as aborted work.
func (e *PageError) GRPCStatus() *status.Status {
	return status.New(codes.Aborted, e.Error())
}
