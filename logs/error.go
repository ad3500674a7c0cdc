package logs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// WrapSpan attaches the run span and session found in ctx to err, so an
// error shown to a user can be found in the logs. errors.Is and errors.As
// still see err.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var attrs []string
	if v, ok := ctx.Value(SpanKey).(Span); ok {
		attrs = append(attrs, "span "+string(v))
	}
	if id := SessionFrom(ctx); id != "" {
		attrs = append(attrs, "session "+id)
	}
	if len(attrs) == 0 {
		return err
	}
	return errors.Join(err, fmt.Errorf("(%s)", strings.Join(attrs, ", ")))
}
