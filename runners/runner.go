package runners

import (
	"context"
	"errors"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/reusee/taibox/analyzers"
	"github.com/reusee/taibox/audits"
	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/hooks"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
	"github.com/reusee/taibox/sanitizes"
	"github.com/reusee/taibox/sources"
	"go.opentelemetry.io/otel/codes"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Runner runs agent snippets the way a notebook cell runs: every statement
// but the last is executed, and the last one is evaluated when it is an
// expression so its value becomes the result.
type Runner struct {
	Engine   *engines.Engine
	Hook     hooks.Hook
	Sanitize bool

	// optional
	Audit   audits.Sink
	Metrics *metrics.Metrics
	Tracer  *metrics.Tracer
	Logger  logs.Logger
	NewSpan logs.NewSpan
}

// Prepare sanitizes, rewrites, parses and analyzes query without running it.
// It returns the final source and its syntax tree.
func (r *Runner) Prepare(query string) (string, *syntax.File, error) {
	src := query
	if r.Sanitize {
		src = sanitizes.Sanitize(src)
	}
	if r.Hook != nil {
		src = r.Hook(src)
	}
	file, err := r.Engine.Parse(src)
	if err != nil {
		return src, nil, err
	}
	if err := analyzers.Analyze(file, r.Engine.Registry(), r.Engine.MaxDepth()); err != nil {
		return src, file, err
	}
	return src, file, nil
}

// Run never panics and always resets surface before returning.
func (r *Runner) Run(ctx context.Context, query string, ns *engines.Namespace, surface Surface) (result Result) {
	start := time.Now()
	if r.NewSpan != nil {
		ctx, _ = r.NewSpan(ctx, "")
	}
	ctx, end := r.startSpan(ctx, query)

	var src string
	defer func() {
		if p := recover(); p != nil {
			// the span id lets the agent's report be matched to the logged stack
			result = Result{
				Err: logs.WrapSpan(ctx, &PanicError{
					Value: p,
					Stack: debug.Stack(),
				}),
			}
		}
		if surface != nil {
			surface.Reset()
		}
		r.finish(ctx, src, result, time.Since(start))
		end(result)
	}()

	src, file, err := r.Prepare(query)
	if err != nil {
		r.report(ctx, src, err)
		return Result{Err: err}
	}
	if len(file.Stmts) == 0 {
		return Result{}
	}

	last := file.Stmts[len(file.Stmts)-1]
	from, _ := last.Span()

	var out io.Writer = io.Discard
	if surface != nil {
		out = surface
	}
	captured := new(strings.Builder)

	exprStmt, ok := last.(*syntax.ExprStmt)
	if !ok {
		// one chunk, so functions of the body see what the tail binds;
		// prints of the tail are captured, the others go to the surface
		ctx := engines.WithTailOutput(engines.WithOutput(ctx, out), from, captured)
		if err := r.Engine.Execute(ctx, src, ns); err != nil {
			r.report(ctx, src, err)
			return Result{Err: err, Output: captured.String()}
		}
		return Result{Output: captured.String()}
	}

	offset := sources.Offset(src, from)
	if offset < 0 {
		// unreachable for trees parsed from src
		offset = 0
	}
	body, stmt := src[:offset], src[offset:]
	if strings.TrimSpace(body) != "" {
		if err := r.Engine.Execute(engines.WithOutput(ctx, out), body, ns); err != nil {
			r.report(ctx, src, err)
			return Result{Err: err}
		}
	}

	tailCtx := engines.WithOutput(ctx, captured)
	expr, ok := sources.Text(src, exprStmt.X)
	if !ok {
		expr = stmt
	}
	value, err := r.Engine.Evaluate(tailCtx, expr, ns)
	if errors.As(err, new(*engines.SyntaxError)) {
		// not a standalone expression; run it as the statement it is
		captured.Reset()
		if err := r.Engine.Execute(tailCtx, stmt, ns); err != nil {
			r.report(ctx, src, err)
			return Result{Err: err, Output: captured.String()}
		}
		return Result{Output: captured.String()}
	}
	if err != nil {
		r.report(ctx, src, err)
		return Result{Err: err, Output: captured.String()}
	}
	if value != nil && value != starlark.None {
		return Result{Value: value, Output: captured.String()}
	}
	return Result{Output: captured.String()}
}

func (r *Runner) report(ctx context.Context, src string, err error) {
	v, ok := analyzers.AsViolation(err)
	if !ok {
		return
	}
	if r.Metrics != nil {
		r.Metrics.RecordViolation(v.Kind.String())
	}
	if r.Audit != nil {
		r.Audit.Record(ctx, audits.NewEvent(logs.SessionFrom(ctx), src, v))
	}
}

func (r *Runner) startSpan(ctx context.Context, query string) (context.Context, func(Result)) {
	if r.Tracer == nil {
		return ctx, func(Result) {}
	}
	ctx, span := r.Tracer.Start(ctx, "run",
		metrics.AttrSession.String(logs.SessionFrom(ctx)),
		metrics.AttrSnippetSize.Int(len(query)),
		metrics.AttrSnippetHash.String(audits.HashSnippet(query)),
	)
	return ctx, func(result Result) {
		span.SetAttributes(metrics.AttrOutcome.String(result.Outcome()))
		if result.Err != nil {
			span.SetAttributes(metrics.AttrKind.String(ErrorKind(result.Err)))
			span.SetStatus(codes.Error, result.Err.Error())
		}
		span.End()
	}
}

func (r *Runner) finish(ctx context.Context, src string, result Result, duration time.Duration) {
	if r.Metrics != nil {
		r.Metrics.RecordRun(result.Outcome(), len(src), duration)
	}
	if r.Logger == nil {
		return
	}
	if result.Err != nil {
		var p *PanicError
		if errors.As(result.Err, &p) {
			r.Logger.ErrorContext(ctx, "snippet panicked",
				"error", p,
				"stack", string(p.Stack),
			)
			return
		}
		r.Logger.InfoContext(ctx, "snippet failed",
			"kind", ErrorKind(result.Err),
			"error", result.Err,
			"duration", duration,
		)
		return
	}
	r.Logger.DebugContext(ctx, "snippet done",
		"duration", duration,
		"has_value", result.Value != nil,
		"output_bytes", len(result.Output),
	)
}
