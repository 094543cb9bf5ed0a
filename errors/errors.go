package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Kind returns how this error propagates through the pipeline.
func (e *AppError) Kind() Kind { return KindOf(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Setup errors ---

// ParseError reports a manifest line that could not be turned into an example.
func ParseError(line int, reason string) *AppError {
	return &AppError{
		Code: ErrCodeParse, Message: fmt.Sprintf("manifest line %d: %s", line, reason),
		Details: map[string]any{"line": line},
	}
}

// EmptyIndex reports a manifest that yielded no examples.
func EmptyIndex(source string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyIndex, Message: fmt.Sprintf("manifest %s contains no examples", source),
		Details: map[string]any{"source": source},
	}
}

// InvalidConfig reports a configuration value that cannot be used.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	msg := reason
	if field != "" {
		msg = fmt.Sprintf("%s: %s", field, reason)
	}
	return &AppError{Code: ErrCodeInvalidConfig, Message: msg, Details: details}
}

// SkipOutOfRange reports a rand_skip bound that does not fit the index.
func SkipOutOfRange(maxSkip, size int) *AppError {
	return &AppError{
		Code:    ErrCodeSkipOutOfRange,
		Message: fmt.Sprintf("not enough examples to skip: rand_skip=%d, index size=%d", maxSkip, size),
		Details: map[string]any{"rand_skip": maxSkip, "size": size},
	}
}

// --- Per-item errors ---

// DecodeError reports an image that could not be decoded.
func DecodeError(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDecode, Message: fmt.Sprintf("could not load image %s", path),
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// ShapeMismatch reports a decoded raster that does not fit the stream's batch shape.
func ShapeMismatch(stream int, want, got any) *AppError {
	return &AppError{
		Code:    ErrCodeShapeMismatch,
		Message: fmt.Sprintf("stream %d: raster %v does not fit batch shape %v", stream, got, want),
		Details: map[string]any{"stream": stream, "want": fmt.Sprint(want), "got": fmt.Sprint(got)},
	}
}

// StorageError reports a failed storage operation. Storage failures are retryable.
func StorageError(op, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("storage %s failed for %s", op, path),
		Retryable: true, Details: map[string]any{"operation": op, "path": path}, Cause: cause,
	}
}

// --- Usage errors ---

// NotReady reports a batch request before setup produced the first ready batch.
func NotReady() *AppError {
	return &AppError{Code: ErrCodeNotReady, Message: "pipeline has not produced a ready batch; call Start first"}
}

// Closed reports use of a pipeline after teardown.
func Closed() *AppError {
	return &AppError{Code: ErrCodeClosed, Message: "pipeline is closed"}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsFatal reports whether err must abort pipeline construction. Errors that
// are not AppErrors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return true
	}
	return appErr.Kind() == KindFatal
}

// IsRetryable reports whether err is a transient AppError.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
