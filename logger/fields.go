package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent   = "component"
	FieldTraceID     = "trace_id"
	FieldSpanID      = "span_id"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldPhase       = "phase"
	FieldStream      = "stream"
	FieldSlot        = "slot"
	FieldBatch       = "batch"
	FieldEpoch       = "epoch"
	FieldCursor      = "cursor"
	FieldPath        = "path"
	FieldFilled      = "filled"
	FieldSkipped     = "skipped"
	FieldReadTime    = "read_ms"
	FieldTransform   = "transform_ms"
	FieldIteration   = "iteration"
	FieldIndexSource = "source"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("op", "save", "id", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// TimingFields creates the read/transform split logged after each batch fill.
func TimingFields(read, transform time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldReadTime:  read.Milliseconds(),
		FieldTransform: transform.Milliseconds(),
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
