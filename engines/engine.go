package engines

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reusee/taibox/allowlists"
	"github.com/reusee/taibox/analyzers"
	"github.com/reusee/taibox/internal/trust"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// SourceName is the file name positions in snippet errors are reported against.
const SourceName = "<snippet>"

var ErrUntrusted = errors.New("invalid trust token")

// Namespace is the state a session carries between calls. Globals are bound
// by the host; Locals collect what snippets bind at top level.
type Namespace struct {
	Globals starlark.StringDict
	Locals  starlark.StringDict
}

func NewNamespace(globals starlark.StringDict) *Namespace {
	if globals == nil {
		globals = make(starlark.StringDict)
	}
	return &Namespace{
		Globals: globals,
		Locals:  make(starlark.StringDict),
	}
}

// Engine parses, analyzes and runs snippets with only the allowed builtins
// in scope. It holds no per-call state and is safe for concurrent use on
// distinct namespaces.
type Engine struct {
	registry *allowlists.Registry
	modules  Modules
	maxDepth int
	options  *syntax.FileOptions
	builtins starlark.StringDict
}

// FileOptions are the dialect snippets are parsed with.
var FileOptions = &syntax.FileOptions{
	Set:               true,
	While:             true,
	TopLevelControl:   true,
	GlobalReassign:    true,
	LoadBindsGlobally: true,
}

// New binds every allowed builtin name to the host's implementation and fails
// if one of them does not exist.
func New(registry *allowlists.Registry, modules Modules, maxDepth int) (*Engine, error) {
	e := &Engine{
		registry: registry,
		modules:  modules,
		maxDepth: maxDepth,
		options:  FileOptions,
		builtins: make(starlark.StringDict),
	}
	for _, name := range registry.Builtins() {
		if name == allowlists.ImportBuiltin {
			e.builtins[name] = starlark.NewBuiltin(name, e.importModule)
			continue
		}
		value, ok := starlark.Universe[name]
		if !ok {
			return nil, fmt.Errorf("builtin %q is allowed but not provided by the host", name)
		}
		e.builtins[name] = value
	}
	return e, nil
}

func (e *Engine) Registry() *allowlists.Registry {
	return e.registry
}

// MaxDepth is the analyzer depth bound, analyzers.Unbounded if not set.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Parse parses a snippet in the engine's dialect.
func (e *Engine) Parse(source string) (*syntax.File, error) {
	file, err := e.options.Parse(SourceName, source, 0)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return file, nil
}

// Execute runs source as a sequence of statements. Top-level bindings are
// written to ns.Locals, also when the run fails part way.
func (e *Engine) Execute(ctx context.Context, source string, ns *Namespace) error {
	file, err := e.Parse(source)
	if err != nil {
		return err
	}
	if err := analyzers.Analyze(file, e.registry, e.maxDepth); err != nil {
		return err
	}

	env := e.env(ns)

	// resolve a separate copy; resolution annotates the tree it runs on
	check, err := e.options.Parse(SourceName, source, 0)
	if err != nil {
		return &SyntaxError{Err: err}
	}
	if err := resolve.REPLChunk(check, env.Has, isNone, isNone); err != nil {
		return resolveError(err)
	}

	return e.exec(ctx, file, env, ns)
}

// Evaluate runs source as a single expression and returns its value.
func (e *Engine) Evaluate(ctx context.Context, source string, ns *Namespace) (starlark.Value, error) {
	expr, err := e.options.ParseExpr(SourceName, source, 0)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	if err := analyzers.Analyze(expr, e.registry, e.maxDepth); err != nil {
		return nil, err
	}

	env := e.env(ns)

	check, err := e.options.ParseExpr(SourceName, source, 0)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	if _, err := resolve.ExprOptions(e.options, check, env.Has, isNone); err != nil {
		return nil, resolveError(err)
	}

	return starlark.EvalExprOptions(e.options, e.thread(ctx), expr, env)
}

// ExecuteTrusted runs source without analysis and with the full host builtin
// set. It exists for deployment preludes.
func (e *Engine) ExecuteTrusted(ctx context.Context, token trust.Token, source string, ns *Namespace) error {
	if !token.Valid() {
		return ErrUntrusted
	}
	file, err := e.Parse(source)
	if err != nil {
		return err
	}
	// names outside the restricted set fall through to starlark.Universe
	return e.exec(ctx, file, e.env(ns), ns)
}

func (e *Engine) exec(ctx context.Context, file *syntax.File, env starlark.StringDict, ns *Namespace) error {
	err := starlark.ExecREPLChunk(file, e.thread(ctx), env)
	if ns.Locals == nil {
		ns.Locals = make(starlark.StringDict)
	}
	for _, name := range boundNames(file.Stmts) {
		if value, ok := env[name]; ok {
			ns.Locals[name] = value
		}
	}
	return err
}

// env layers the restricted builtins, then globals, then locals. The
// namespace maps are copied, never handed to the interpreter.
func (e *Engine) env(ns *Namespace) starlark.StringDict {
	env := make(starlark.StringDict, len(e.builtins)+len(ns.Globals)+len(ns.Locals))
	for name, value := range e.builtins {
		env[name] = value
	}
	for name, value := range ns.Globals {
		env[name] = value
	}
	for name, value := range ns.Locals {
		env[name] = value
	}
	return env
}

func (e *Engine) thread(ctx context.Context) *starlark.Thread {
	writer := printer(ctx)
	thread := &starlark.Thread{
		Name: "snippet",
		Print: func(thread *starlark.Thread, msg string) {
			out := writer(thread)
			io.WriteString(out, msg)
			io.WriteString(out, "\n")
		},
		Load: e.load,
	}
	thread.SetLocal(contextLocal, ctx)
	return thread
}

func isNone(string) bool {
	return false
}

func resolveError(err error) error {
	var list resolve.ErrorList
	if errors.As(err, &list) && len(list) > 0 && strings.HasPrefix(list[0].Msg, "undefined:") {
		return &NameError{Err: err}
	}
	return &SyntaxError{Err: err}
}
