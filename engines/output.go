package engines

import (
	"context"
	"io"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

type outputKey struct{}

// WithOutput directs print calls of runs under ctx to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

type tailOutputKey struct{}

type tailOutput struct {
	from syntax.Position
	w    io.Writer
}

// WithTailOutput directs print calls made while the top-level statement at
// or after from runs to w, including prints of functions it calls.
func WithTailOutput(ctx context.Context, from syntax.Position, w io.Writer) context.Context {
	return context.WithValue(ctx, tailOutputKey{}, tailOutput{
		from: from,
		w:    w,
	})
}

// printer picks the writer of a print call by where the top-level frame is.
func printer(ctx context.Context) func(*starlark.Thread) io.Writer {
	out := outputFrom(ctx)
	var tail tailOutput
	if ctx != nil {
		tail, _ = ctx.Value(tailOutputKey{}).(tailOutput)
	}
	if tail.w == nil {
		return func(*starlark.Thread) io.Writer {
			return out
		}
	}
	return func(thread *starlark.Thread) io.Writer {
		depth := thread.CallStackDepth()
		if depth == 0 {
			return out
		}
		pos := thread.CallFrame(depth - 1).Pos
		if pos.Line > tail.from.Line ||
			(pos.Line == tail.from.Line && pos.Col >= tail.from.Col) {
			return tail.w
		}
		return out
	}
}

func outputFrom(ctx context.Context) io.Writer {
	if ctx != nil {
		if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
			return w
		}
	}
	return io.Discard
}

const contextLocal = "taibox.context"

// Context returns the context of the run a builtin is called from.
func Context(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(contextLocal).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}
