package engines

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/allowlists"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
	"go.starlark.net/starlarkstruct"
)

type Module struct {
	dscope.Module
	Allowlists allowlists.Module
}

// MaxDepth bounds the analyzed syntax tree depth. Zero means unbounded.
type MaxDepth int

var _ configs.Configurable = MaxDepth(0)

func (m MaxDepth) ConfigExpr() string {
	return "MaxDepth"
}

var maxDepthFlag = cmds.Var[int]("-max-depth", "override max_depth")

func (Module) MaxDepth(
	loader configs.Loader,
) MaxDepth {
	if *maxDepthFlag > 0 {
		return MaxDepth(*maxDepthFlag)
	}
	return MaxDepth(configs.First[int](loader, "max_depth"))
}

// ExtraModules are deployment modules importable next to StdModules,
// provided by the packages that own them.
type ExtraModules []*starlarkstruct.Module

func (Module) Modules(
	extra ExtraModules,
) Modules {
	return StdModules().With(extra...)
}

func (Module) Engine(
	registry *allowlists.Registry,
	modules Modules,
	maxDepth MaxDepth,
	logger logs.Logger,
) *Engine {
	engine, err := New(registry, modules, int(maxDepth))
	if err != nil {
		panic(err)
	}
	logger.Info("engine ready",
		"max_depth", int(maxDepth),
		"modules", len(modules),
	)
	return engine
}
