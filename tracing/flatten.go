package tracing

import (
	"reflect"

	"go.opentelemetry.io/otel/attribute"
)

// Flatten walks a struct and produces one attribute per exported field, with
// nested structs joined by dots ("Config.Enabled"). Callers use it to attach
// structured values the export format cannot carry directly.
//
// Non-struct input yields a single attribute under prefix.
func Flatten(prefix string, thing any) []attribute.KeyValue {
	v := reflect.ValueOf(thing)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		if prefix == "" {
			return nil
		}
		return []attribute.KeyValue{Scalar(prefix, thing)}
	}

	t := v.Type()
	attrs := make([]attribute.KeyValue, 0, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Name
		if prefix != "" {
			key = prefix + "." + key
		}

		val := v.Field(i)
		if val.Kind() == reflect.Struct {
			attrs = append(attrs, Flatten(key, val.Interface())...)
			continue
		}

		attrs = append(attrs, Scalar(key, val.Interface()))
	}

	return attrs
}
