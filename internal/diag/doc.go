// Package diag defines the diagnostic model shared by all pipeline stages.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (MSG/SYN/TYP/LOW/EVL/IO prefixes), a short Message, the Primary
// span and optional Notes. Stages that work on span-free trees (lowering,
// evaluation) set NodeID instead and let the driver resolve it through the
// TypedAST span index.
//
// Producers emit through a Reporter (BagReporter collects into a Bag) or
// return typed errors implementing Diagnoser; FromError converts either form.
//
// Package diag performs no formatting or IO. Rendering lives in internal/diagfmt.
package diag
