package runners

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/audits"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/hooks"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
)

type Module struct {
	dscope.Module
	Engines engines.Module
	Hooks   hooks.Module
	Audits  audits.Module
	Metrics metrics.Module
}

// Sanitize turns input sanitizing on or off. It is on unless the config
// says sanitize: false or -raw is given.
type Sanitize bool

var _ configs.Configurable = Sanitize(false)

func (s Sanitize) ConfigExpr() string {
	return "Sanitize"
}

var rawFlag = cmds.Switch("-raw", "skip query sanitizing")

func (Module) Sanitize(
	loader configs.Loader,
) Sanitize {
	if *rawFlag {
		return false
	}
	if v := configs.First[*bool](loader, "sanitize"); v != nil {
		return Sanitize(*v)
	}
	return true
}

func (Module) Runner(
	engine *engines.Engine,
	hook hooks.Hook,
	sanitize Sanitize,
	sink audits.Sink,
	m *metrics.Metrics,
	tracer *metrics.Tracer,
	logger logs.Logger,
	newSpan logs.NewSpan,
) *Runner {
	return &Runner{
		Engine:   engine,
		Hook:     hook,
		Sanitize: bool(sanitize),
		Audit:    sink,
		Metrics:  m,
		Tracer:   tracer,
		Logger:   logger,
		NewSpan:  newSpan,
	}
}
