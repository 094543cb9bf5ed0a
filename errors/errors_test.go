package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeDecode, "bad png")
	if err.Code != ErrCodeDecode {
		t.Errorf("expected code %s, got %s", ErrCodeDecode, err.Code)
	}
	if err.Message != "bad png" {
		t.Errorf("expected message 'bad png', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("DECODE_ERROR should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeStorage, "connection reset")
	if !err.Retryable {
		t.Error("STORAGE_ERROR should be retryable")
	}
}

func TestAppError_ParseError(t *testing.T) {
	err := ParseError(7, "expected 3 tokens, got 2")
	if err.Code != ErrCodeParse {
		t.Errorf("expected PARSE_ERROR, got %s", err.Code)
	}
	if err.Details["line"] != 7 {
		t.Errorf("expected line=7, got %v", err.Details["line"])
	}
	if !strings.Contains(err.Error(), "manifest line 7") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAppError_SkipOutOfRange(t *testing.T) {
	err := SkipOutOfRange(5, 5)
	if err.Kind() != KindFatal {
		t.Errorf("expected fatal kind, got %s", err.Kind())
	}
	if err.Details["rand_skip"] != 5 || err.Details["size"] != 5 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_InvalidConfig_NoField(t *testing.T) {
	err := InvalidConfig("", "new_height and new_width must be set together")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no 'field' key in details when field is empty")
	}
	if err.Message != "new_height and new_width must be set together" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAppError_ShapeMismatch(t *testing.T) {
	err := ShapeMismatch(1, "[4 3 8 8]", "3x6x6")
	if err.Kind() != KindRecoverable {
		t.Errorf("expected recoverable, got %s", err.Kind())
	}
	if err.Details["stream"] != 1 {
		t.Errorf("expected stream=1, got %v", err.Details["stream"])
	}
}

func TestAppError_Internal_Success(t *testing.T) {
	cause := fmt.Errorf("worker panicked")
	err := Internal(cause)
	if err.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
	}
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	if err.Retryable {
		t.Error("Internal should NOT be retryable by default")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want Kind
	}{
		{ErrCodeParse, KindFatal},
		{ErrCodeEmptyIndex, KindFatal},
		{ErrCodeInvalidConfig, KindFatal},
		{ErrCodeSkipOutOfRange, KindFatal},
		{ErrCodeDecode, KindRecoverable},
		{ErrCodeShapeMismatch, KindRecoverable},
		{ErrCodeNotReady, KindStructural},
		{ErrCodeClosed, KindStructural},
		{ErrorCode("SOMETHING_ELSE"), KindFatal},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			if got := KindOf(tc.code); got != tc.want {
				t.Errorf("KindOf(%s) = %s, want %s", tc.code, got, tc.want)
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := DecodeError("a.png", nil).WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := DecodeError("a.png", nil).WithDetails(map[string]any{
		"stream": 0,
	})
	if err.Details["stream"] != 0 {
		t.Errorf("expected stream=0 in details")
	}
	if err.Details["path"] != "a.png" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value")
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", EmptyIndex("train.txt"))
	if !HasCode(wrapped, ErrCodeEmptyIndex) {
		t.Error("expected wrapped EMPTY_INDEX to be found")
	}
	if HasCode(wrapped, ErrCodeParse) {
		t.Error("did not expect PARSE_ERROR")
	}
	if HasCode(stderrors.New("plain"), ErrCodeParse) {
		t.Error("plain errors carry no code")
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if !IsFatal(stderrors.New("plain")) {
		t.Error("plain errors are treated as fatal")
	}
	if IsFatal(DecodeError("x", nil)) {
		t.Error("decode errors are recoverable")
	}
	if IsFatal(NotReady()) {
		t.Error("NOT_READY is structural, not fatal")
	}
	if !IsFatal(ParseError(1, "short")) {
		t.Error("parse errors are fatal")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(StorageError("download", "s3://b/k", stderrors.New("timeout"))) {
		t.Error("storage errors are retryable")
	}
	if IsRetryable(DecodeError("x", nil)) {
		t.Error("decode errors are not retryable")
	}
}
