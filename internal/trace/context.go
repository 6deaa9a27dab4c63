package trace

import "context"

// state is what the trace package keeps in a context: the tracer, the
// innermost open span and the unit being compiled.
type state struct {
	tracer Tracer
	span   SpanContext
}

type stateKey struct{}

// SpanContext identifies the innermost span of a context.
type SpanContext struct {
	SpanID uint64
	GID    uint64
	// Unit names the compilation unit; spans started under it carry the name.
	Unit string
}

func load(ctx context.Context) state {
	if ctx == nil {
		return state{tracer: Nop}
	}
	st, ok := ctx.Value(stateKey{}).(state)
	if !ok || st.tracer == nil {
		st.tracer = Nop
	}
	return st
}

func store(ctx context.Context, st state) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, stateKey{}, st)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer { return load(ctx).tracer }

// WithTracer attaches t; the current span and unit are kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	st := load(ctx)
	st.tracer = t
	if t == nil {
		st.tracer = Nop
	}
	return store(ctx, st)
}

// CurrentSpan returns the innermost span, zero outside any span.
func CurrentSpan(ctx context.Context) SpanContext { return load(ctx).span }

// WithUnit marks ctx as working on unit. Spans started from the returned
// context, and their children, are tagged with it.
func WithUnit(ctx context.Context, unit string) context.Context {
	st := load(ctx)
	st.span.Unit = unit
	return store(ctx, st)
}

// UnitOf is the unit ctx works on, "" when none.
func UnitOf(ctx context.Context) string { return load(ctx).span.Unit }

func withSpan(ctx context.Context, sc SpanContext) context.Context {
	st := load(ctx)
	st.span = sc
	return store(ctx, st)
}
