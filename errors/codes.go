package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Setup errors (fatal)
const (
	// ErrCodeParse indicates a malformed manifest record.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeEmptyIndex indicates the manifest produced no examples.
	ErrCodeEmptyIndex ErrorCode = "EMPTY_INDEX"
	// ErrCodeInvalidConfig indicates a configuration value is out of range or inconsistent.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeSkipOutOfRange indicates rand_skip does not fit inside the index.
	ErrCodeSkipOutOfRange ErrorCode = "SKIP_OUT_OF_RANGE"
)

// Per-item errors (recoverable)
const (
	// ErrCodeDecode indicates an image could not be decoded.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
	// ErrCodeShapeMismatch indicates a decoded raster does not fit the established batch shape.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"
)

// Usage errors (structural)
const (
	// ErrCodeNotReady indicates a batch was requested before the pipeline produced one.
	ErrCodeNotReady ErrorCode = "NOT_READY"
	// ErrCodeClosed indicates the pipeline has been torn down.
	ErrCodeClosed ErrorCode = "CLOSED"
)

// Infrastructure errors
const (
	// ErrCodeStorage indicates a read or write against the backing store failed.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Kind classifies how an error propagates through the pipeline.
type Kind string

const (
	KindFatal       Kind = "fatal"
	KindRecoverable Kind = "recoverable"
	KindStructural  Kind = "structural"
)

var codeKinds = map[ErrorCode]Kind{
	ErrCodeParse:          KindFatal,
	ErrCodeEmptyIndex:     KindFatal,
	ErrCodeInvalidConfig:  KindFatal,
	ErrCodeSkipOutOfRange: KindFatal,
	ErrCodeDecode:         KindRecoverable,
	ErrCodeShapeMismatch:  KindRecoverable,
	ErrCodeStorage:        KindRecoverable,
	ErrCodeNotReady:       KindStructural,
	ErrCodeClosed:         KindStructural,
	ErrCodeInternal:       KindFatal,
}

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage:  true,
	ErrCodeDecode:   false,
	ErrCodeInternal: false,
}

// IsRetryableCode returns true if the error code indicates a transient failure.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// KindOf returns the propagation kind for a code. Unknown codes are fatal.
func KindOf(code ErrorCode) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindFatal
}
