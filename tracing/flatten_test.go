package tracing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestFlatten(t *testing.T) {

	thing := thingTest{
		Name:   "test",
		Age:    43,
		Active: true,
		Config: thingTestNested{
			Enabled: false,
			Counter: 52,
		},
	}

	expected := []attribute.KeyValue{
		attribute.String("Name", "test"),
		attribute.Int64("Age", 43),
		attribute.Bool("Active", true),
		attribute.Bool("Config.Enabled", false),
		attribute.Int64("Config.Counter", 52),
	}

	require.Equal(t, expected, Flatten("", thing))

	t.Run("with prefix", func(t *testing.T) {
		attrs := Flatten("request", thing)
		require.Equal(t, attribute.Key("request.Name"), attrs[0].Key)
		require.Equal(t, attribute.Key("request.Config.Enabled"), attrs[3].Key)
	})

	t.Run("pointer input", func(t *testing.T) {
		require.Equal(t, expected, Flatten("", &thing))

		var nothing *thingTest
		require.Nil(t, Flatten("", nothing))
	})

	t.Run("scalar input", func(t *testing.T) {
		require.Equal(t,
			[]attribute.KeyValue{attribute.Int("count", 7)},
			Flatten("count", 7))
	})

	t.Run("attaches to the active span", func(t *testing.T) {
		exporter, restore := installTraceProvider()
		defer restore()

		ctx, span := OpenSpan(t.Context(), "observability_check")
		SetAttributes(ctx, Flatten("check.config", thing)...)
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Contains(t, spans[0].Attributes, attribute.String("check.config.Name", "test"))
		require.Contains(t, spans[0].Attributes, attribute.Bool("check.config.Config.Enabled", false))
	})
}

type thingTest struct {
	Name   string
	Age    int32
	Active bool
	Config thingTestNested

	hidden string
}

type thingTestNested struct {
	Enabled bool
	Counter int64
}
