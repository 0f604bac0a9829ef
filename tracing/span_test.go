package tracing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanNesting(t *testing.T) {
	exporter, restore := installTraceProvider()
	defer restore()

	ctx := context.Background()

	ctx, root := OpenSpan(ctx, "outer")
	childCtx, child := OpenSpan(ctx, "inner")
	_, grandchild := OpenSpan(childCtx, "innermost")

	grandchild.End()
	child.End()

	// a sibling opened after the child closed still parents to the root
	_, sibling := OpenSpan(ctx, "sibling")
	sibling.End()

	root.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)

	byName := spansByName(spans)

	rootStub := byName["outer"]
	require.False(t, rootStub.Parent.SpanID().IsValid())

	require.Equal(t, rootStub.SpanContext.SpanID(), byName["inner"].Parent.SpanID())
	require.Equal(t, byName["inner"].SpanContext.SpanID(), byName["innermost"].Parent.SpanID())
	require.Equal(t, rootStub.SpanContext.SpanID(), byName["sibling"].Parent.SpanID())

	for name, stub := range byName {
		require.False(t, stub.EndTime.Before(stub.StartTime), "span %s ended before it started", name)
		require.Equal(t, rootStub.SpanContext.TraceID(), stub.SpanContext.TraceID())
	}

	t.Run("children close before their parent", func(t *testing.T) {
		require.False(t, rootStub.EndTime.Before(byName["inner"].EndTime))
		require.False(t, byName["inner"].EndTime.Before(byName["innermost"].EndTime))
	})
}

func TestConcurrentRequestsAreIsolated(t *testing.T) {
	exporter, restore := installTraceProvider()
	defer restore()

	var wg sync.WaitGroup
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			name := fmt.Sprintf("request_%d", i)
			ctx, root := OpenSpan(context.Background(), name)
			SetAttribute(ctx, "request.index", i)

			_, child := OpenSpan(ctx, name+"_child")
			child.End()
			root.End()
		}()
	}
	wg.Wait()

	byName := spansByName(exporter.GetSpans())
	require.Len(t, byName, 4)

	for i := range 2 {
		name := fmt.Sprintf("request_%d", i)
		root := byName[name]
		child := byName[name+"_child"]

		require.Equal(t, root.SpanContext.SpanID(), child.Parent.SpanID())
		require.Equal(t, root.SpanContext.TraceID(), child.SpanContext.TraceID())
		require.Contains(t, root.Attributes, attribute.Int("request.index", i))
	}

	require.NotEqual(t,
		byName["request_0"].SpanContext.TraceID(),
		byName["request_1"].SpanContext.TraceID(),
	)
}

func TestWithSpan(t *testing.T) {
	exporter, restore := installTraceProvider()
	defer restore()

	t.Run("success", func(t *testing.T) {
		exporter.Reset()

		err := WithSpan(context.Background(), "op", func(ctx context.Context) error {
			SetAttribute(ctx, "ran", true)
			return nil
		})
		require.NoError(t, err)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.NotEqual(t, codes.Error, spans[0].Status.Code)
		require.Contains(t, spans[0].Attributes, attribute.Bool("ran", true))
	})

	t.Run("error is recorded and span still closes", func(t *testing.T) {
		exporter.Reset()

		boom := fmt.Errorf("boom")
		err := WithSpan(context.Background(), "op", func(ctx context.Context) error {
			return boom
		})
		require.ErrorIs(t, err, boom)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Equal(t, codes.Error, spans[0].Status.Code)
		require.False(t, spans[0].EndTime.IsZero())
	})

	t.Run("cancellation closes the span with error status", func(t *testing.T) {
		exporter.Reset()

		ctx, cancel := context.WithCancel(context.Background())
		err := WithSpan(ctx, "op", func(ctx context.Context) error {
			cancel()
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Equal(t, codes.Error, spans[0].Status.Code)
		require.False(t, spans[0].EndTime.IsZero())
	})

	t.Run("panic closes the span before repanic", func(t *testing.T) {
		exporter.Reset()

		require.Panics(t, func() {
			WithSpan(context.Background(), "op", func(ctx context.Context) error {
				panic("kaboom")
			})
		})

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Equal(t, codes.Error, spans[0].Status.Code)
	})
}

func TestSearchRequestScenario(t *testing.T) {
	exporter, restore := installTraceProvider()
	defer restore()

	ctx, root := OpenSpan(context.Background(), "search_request")
	SetAttribute(ctx, "query", "sdg7")
	SetAttribute(ctx, "query.is_sdg", true)

	childCtx, child := OpenSpan(ctx, "filter_by_sdg_tag")
	SetAttribute(childCtx, "sdg_results.count", 25)
	child.End()

	root.End()

	byName := spansByName(exporter.GetSpans())
	require.Len(t, byName, 2)

	rootStub := byName["search_request"]
	require.False(t, rootStub.Parent.SpanID().IsValid())
	require.Contains(t, rootStub.Attributes, attribute.String("query", "sdg7"))
	require.Contains(t, rootStub.Attributes, attribute.Bool("query.is_sdg", true))

	childStub := byName["filter_by_sdg_tag"]
	require.Equal(t, rootStub.SpanContext.SpanID(), childStub.Parent.SpanID())
	require.Contains(t, childStub.Attributes, attribute.Int("sdg_results.count", 25))

	require.False(t, rootStub.EndTime.Before(rootStub.StartTime))
	require.False(t, childStub.EndTime.Before(childStub.StartTime))
}

func TestSetAttributeWithoutSpan(t *testing.T) {
	// no active span: must be a silent no-op
	require.NotPanics(t, func() {
		SetAttribute(context.Background(), "some.key", "value")
		SetAttributes(context.Background(), attribute.Bool("other.key", true))
	})
}

func TestScalarCoercion(t *testing.T) {
	cases := []struct {
		value    any
		expected attribute.KeyValue
	}{
		{"text", attribute.String("k", "text")},
		{true, attribute.Bool("k", true)},
		{42, attribute.Int("k", 42)},
		{int32(42), attribute.Int64("k", 42)},
		{int64(42), attribute.Int64("k", 42)},
		{float32(1.5), attribute.Float64("k", 1.5)},
		{2.5, attribute.Float64("k", 2.5)},
		{[]string{"a", "b"}, attribute.String("k", "[a b]")},
	}

	for _, tc := range cases {
		t.Run("", func(t *testing.T) {
			require.Equal(t, tc.expected, Scalar("k", tc.value))
		})
	}
}

func spansByName(spans tracetest.SpanStubs) map[string]tracetest.SpanStub {
	byName := make(map[string]tracetest.SpanStub, len(spans))
	for _, span := range spans {
		byName[span.Name] = span
	}
	return byName
}
