package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeOutOfStock   = "OUT_OF_STOCK"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeUnavailable  = "UNAVAILABLE"
)

// transport is how one error code travels over HTTP and gRPC
type transport struct {
	http int
	grpc codes.Code
}

var transports = map[string]transport{
	CodeValidation:   {http.StatusBadRequest, codes.InvalidArgument},
	CodeNotFound:     {http.StatusNotFound, codes.NotFound},
	CodeConflict:     {http.StatusConflict, codes.AlreadyExists},
	CodeOutOfStock:   {http.StatusConflict, codes.FailedPrecondition},
	CodeUnauthorized: {http.StatusUnauthorized, codes.Unauthenticated},
	CodeUnavailable:  {http.StatusServiceUnavailable, codes.Unavailable},
	CodeInternal:     {http.StatusInternalServerError, codes.Internal},
}

// fromGRPC is the reverse of transports. A deadline counts as the other
// side being unavailable.
var fromGRPC = map[codes.Code]string{
	codes.InvalidArgument:    CodeValidation,
	codes.NotFound:           CodeNotFound,
	codes.AlreadyExists:      CodeConflict,
	codes.FailedPrecondition: CodeOutOfStock,
	codes.Unauthenticated:    CodeUnauthorized,
	codes.Unavailable:        CodeUnavailable,
	codes.DeadlineExceeded:   CodeUnavailable,
}

func transportOf(code string) transport {
	if t, ok := transports[code]; ok {
		return t
	}
	return transports[CodeInternal]
}

// AppError represents an application error
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON response structure for errors
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToJSON converts an error to the standard JSON response. Anything that is
// not an AppError is reported as a generic internal error.
func ToJSON(err error, traceID string) (int, []byte) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{
			Code:    CodeInternal,
			Message: "An internal error occurred",
		}
	}

	response := ErrorResponse{
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		TraceID: traceID,
	}

	data, _ := json.Marshal(response)
	return HTTPStatus(appErr), data
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	return transportOf(appErr.Code).http
}

// GRPCStatus converts an error to a gRPC status
func GRPCStatus(err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		// already a status (e.g. deadline from a downstream call)
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(transportOf(appErr.Code).grpc, appErr.Message)
}

// FromGRPCStatus converts a gRPC status to an AppError
func FromGRPCStatus(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	st, ok := status.FromError(err)
	if !ok {
		return NewInternal("unknown error", err)
	}

	code, ok := fromGRPC[st.Code()]
	if !ok {
		code = CodeInternal
	}
	return &AppError{
		Code:    code,
		Message: st.Message(),
		Err:     err,
	}
}

// Message extracts the most useful human-readable message from err.
// AppErrors and gRPC statuses yield their message; anything else its text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if st, ok := status.FromError(err); ok && st.Message() != "" {
		return st.Message()
	}
	return err.Error()
}

// NewValidation creates a validation error
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Details: details}
}

// NewNotFound creates a not found error
func NewNotFound(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id '%v' not found", resource, id),
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewOutOfStock creates the error returned when nothing at all can be ordered
func NewOutOfStock(message string, details interface{}) *AppError {
	return &AppError{Code: CodeOutOfStock, Message: message, Details: details}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewUnavailable wraps a failed call to another service
func NewUnavailable(message string, err error) *AppError {
	return &AppError{Code: CodeUnavailable, Message: message, Err: err}
}

// Is checks if an error carries a specific code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Wrap prefixes the message of err and keeps its code; anything else
// becomes an internal error
func Wrap(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message + ": " + appErr.Message,
			Details: appErr.Details,
			Err:     err,
		}
	}
	return NewInternal(message, err)
}
