package engines

import (
	"fmt"

	"github.com/reusee/taibox/analyzers"
	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Modules is the table import targets resolve against, by module name.
type Modules map[string]*starlarkstruct.Module

// StdModules are the library modules shipped with the interpreter.
func StdModules() Modules {
	return Modules{
		"math": math.Module,
		"time": time.Module,
		"json": json.Module,
		"struct": {
			Name: "struct",
			Members: starlark.StringDict{
				"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
			},
		},
	}
}

// With returns a copy of the table with extra modules added under their own
// names.
func (m Modules) With(modules ...*starlarkstruct.Module) Modules {
	ret := make(Modules, len(m)+len(modules))
	for name, module := range m {
		ret[name] = module
	}
	for _, module := range modules {
		if module != nil {
			ret[module.Name] = module
		}
	}
	return ret
}

func (e *Engine) resolveModule(thread *starlark.Thread, depth int, name string) (*starlarkstruct.Module, error) {
	if !e.registry.IsImportAllowed(name) {
		violation := &analyzers.Violation{
			Kind: analyzers.DisallowedImport,
			Name: name,
		}
		if thread.CallStackDepth() > depth {
			violation.Pos = thread.CallFrame(depth).Pos
		}
		return nil, violation
	}
	module, ok := e.modules[name]
	if !ok {
		return nil, fmt.Errorf("module %q not found", name)
	}
	return module, nil
}

// load serves load statements. The module itself is bound under its own
// name next to its members, so load("math", "math") works.
func (e *Engine) load(thread *starlark.Thread, name string) (starlark.StringDict, error) {
	module, err := e.resolveModule(thread, 0, name)
	if err != nil {
		return nil, err
	}
	ret := make(starlark.StringDict, len(module.Members)+1)
	for member, value := range module.Members {
		ret[member] = value
	}
	if _, ok := ret[name]; !ok {
		ret[name] = module
	}
	return ret, nil
}

// importModule is the dynamic import builtin. Its argument may be computed,
// so the allow-list is consulted here as well as by the analyzer.
func (e *Engine) importModule(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	module, err := e.resolveModule(thread, 1, name)
	if err != nil {
		return nil, err
	}
	return module, nil
}
