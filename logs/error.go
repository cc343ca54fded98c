package logs

import (
	"context"
	"errors"
	"fmt"
)

// SpanError is an error raised while a span was active, such as a syntax
// error in the command being read.
type SpanError struct {
	Span Span
	Err  error
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%v (span %s)", e.Err, e.Span)
}

func (e *SpanError) Unwrap() error {
	return e.Err
}

// WrapSpan attaches the span in ctx to err. Errors that already carry a
// span are returned unchanged.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	v := ctx.Value(SpanKey)
	if v == nil {
		return err
	}
	var spanErr *SpanError
	if errors.As(err, &spanErr) {
		return err
	}
	return &SpanError{
		Span: v.(Span),
		Err:  err,
	}
}
