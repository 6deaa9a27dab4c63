// Package trace provides the tracing subsystem of the langlang pipeline.
//
// Tracing follows a unit through the stages, shows where time goes and
// records lowering invariant violations, which are compiler bugs and are
// never shown to users as ordinary diagnostics.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	langlang run --trace=- --trace-level=phase config.ll
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped at exit
//   - MultiTracer: stream and ring together (--trace-mode=both)
//   - Heartbeat: wraps any of them and periodically names the stages
//     still running, per unit
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: error events only
//   - LevelPhase: driver and stage boundaries
//   - LevelDetail: per-unit events
//   - LevelDebug: everything including node-level evaluation
//
// # Scopes
//
//   - ScopeDriver: top-level CLI operations and batches
//   - ScopeStage: parse, check, lower, eval
//   - ScopeUnit: per-unit work inside a stage
//   - ScopeNode: node-level detail
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithUnit(ctx, "app.ll")
//	span, ctx := trace.StartSpan(ctx, trace.ScopeStage, "check")
//	defer span.End("")
//
// Spans started under WithUnit carry the unit name, so interleaved events
// of a parallel batch can be told apart.
package trace
