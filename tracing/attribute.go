package tracing

import (
	"context"
	"fmt"

	"sdgsearch/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// attribute values longer than this get cut; the export format has no use for
// unbounded strings.
const maxValueLength = 1024

// SetAttribute attaches one scalar value to the span carried by ctx. When the
// context carries no span (or export is disabled) this does nothing; it never
// fails. Keys are dotted by convention ("query.is_sdg").
func SetAttribute(ctx context.Context, key string, value any) {
	trace.SpanFromContext(ctx).SetAttributes(Scalar(key, value))
}

// SetAttributes attaches already-built attributes to the span carried by ctx.
func SetAttributes(ctx context.Context, kvs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(kvs...)
}

// Scalar converts value into a typed attribute. Strings, booleans, integers
// and floats keep their type; anything else is stringified, as the exporter
// only understands scalars.
func Scalar(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, util.Truncate(v, maxValueLength))
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int32:
		return attribute.Int64(key, int64(v))
	case int64:
		return attribute.Int64(key, v)
	case float32:
		return attribute.Float64(key, float64(v))
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, util.Truncate(fmt.Sprint(v), maxValueLength))
	}
}
