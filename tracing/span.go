package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultScope = "sdgsearch"

// Tracer returns a named tracer from the configured provider. Before
// Configure, or when export is disabled, the returned tracer produces
// non-recording spans.
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = defaultScope
	}
	return otel.Tracer(name)
}

// OpenSpan starts a span parented to whatever span the context carries, or a
// new root when it carries none. The returned span must be ended exactly once;
// the returned context makes it the parent of any spans opened beneath it.
func OpenSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return Tracer(defaultScope).Start(ctx, name)
}

// WithSpan runs fn inside a span that is closed on every exit path. A returned
// error, a panic, or a cancelled context all mark the span before it ends.
func WithSpan(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := OpenSpan(ctx, name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			Errorf(span, "panic: %v", r)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		return Error(span, err)
	}

	if err := ctx.Err(); err != nil {
		return Error(span, err)
	}

	return nil
}

func ErrorCtx(ctx context.Context, err error) error {
	span := trace.SpanFromContext(ctx)

	return Error(span, err)
}

func Errorf(s trace.Span, format string, a ...interface{}) error {
	return Error(s, fmt.Errorf(format, a...))
}

func Error(s trace.Span, err error) error {
	s.RecordError(err)
	s.SetStatus(codes.Error, err.Error())

	return err
}
