package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DetachToken undoes exactly one AttachBaggage call. It records the key's
// prior entry, so nested attaches for the same key unwind correctly and
// detaching in any order, or twice, is harmless.
type DetachToken struct {
	key      string
	prev     baggage.Member
	replaced bool
	valid    bool
}

// AttachBaggage adds a key/value pair that is copied onto every span opened
// beneath the returned context, and propagated to downstream services through
// the baggage headers. The caller owns the token and must pass it to
// DetachBaggage on every exit path of the enclosing operation; a leaked entry
// stays on all later spans of the request.
//
// An invalid key or value yields an inert token and leaves the context
// unchanged.
func AttachBaggage(ctx context.Context, key, value string) (context.Context, DetachToken) {
	member, err := baggage.NewMember(key, value)
	if err != nil {
		return ctx, DetachToken{}
	}

	bag := baggage.FromContext(ctx)

	prev := bag.Member(key)
	replaced := prev.Key() != ""

	bag, err = bag.SetMember(member)
	if err != nil {
		return ctx, DetachToken{}
	}

	token := DetachToken{key: key, prev: prev, replaced: replaced, valid: true}
	return baggage.ContextWithBaggage(ctx, bag), token
}

// DetachBaggage restores the entry the matching AttachBaggage replaced. It is
// a precise undo for one key, not a clear-all; tokens from unrelated attaches
// are unaffected. Inert or repeated tokens are no-ops.
func DetachBaggage(ctx context.Context, token DetachToken) context.Context {
	if !token.valid {
		return ctx
	}

	bag := baggage.FromContext(ctx)

	if token.replaced {
		restored, err := bag.SetMember(token.prev)
		if err != nil {
			return ctx
		}
		bag = restored
	} else {
		bag = bag.DeleteMember(token.key)
	}

	return baggage.ContextWithBaggage(ctx, bag)
}

// Baggage returns the current overlay as a plain map, mostly for tests and
// diagnostics.
func Baggage(ctx context.Context) map[string]string {
	members := baggage.FromContext(ctx).Members()
	m := make(map[string]string, len(members))
	for _, member := range members {
		m[member.Key()] = member.Value()
	}
	return m
}

// NewBaggageProcessor returns the span processor Configure installs: it
// stamps every baggage member onto each span as it starts. Exposed for
// callers building their own provider.
func NewBaggageProcessor() sdktrace.SpanProcessor {
	return baggageCopier{}
}

// baggageCopier stamps every baggage member onto each span as it starts, the
// same effect the upstream baggage span processor has.
type baggageCopier struct{}

var _ sdktrace.SpanProcessor = baggageCopier{}

func (baggageCopier) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	for _, member := range baggage.FromContext(parent).Members() {
		s.SetAttributes(attribute.String(member.Key(), member.Value()))
	}
}

func (baggageCopier) OnEnd(sdktrace.ReadOnlySpan)      {}
func (baggageCopier) Shutdown(context.Context) error   { return nil }
func (baggageCopier) ForceFlush(context.Context) error { return nil }
