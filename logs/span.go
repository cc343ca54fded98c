package logs

// Span identifies one unit of work, such as a single top-level command
// evaluated by the interpreter.
type Span string

type spanKey struct{}

// SpanKey is the context key holding the current Span.
var SpanKey spanKey
