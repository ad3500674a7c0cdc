package sessions

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/catalogs"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/hooks"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
	"github.com/reusee/taibox/runners"
	"github.com/reusee/taibox/syncs"
	"github.com/reusee/taibox/warehouses"
	"go.starlark.net/starlark"
)

type Module struct {
	dscope.Module
	Runners    runners.Module
	Catalogs   catalogs.Module
	Warehouses warehouses.Module
}

// ClientName is the global the warehouse client is bound to in every session.
const ClientName = "client"

type Preludes []string

var preludeFiles = cmds.Collect[string]("-prelude", "run FILE in every new session")

// Preludes accumulate across config files, /etc ones running first, then the
// -prelude files in command line order.
func (Module) Preludes(
	loader configs.Loader,
) Preludes {
	layers := configs.All[[]string](loader, "preludes")
	slices.Reverse(layers)
	var preludes Preludes
	for _, layer := range layers {
		preludes = append(preludes, layer...)
	}
	for _, path := range *preludeFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Errorf("prelude: %w", err))
		}
		preludes = append(preludes, string(content))
	}
	return preludes
}

type Idle time.Duration

const DefaultIdle = 30 * time.Minute

var idleFlag = cmds.Var[time.Duration]("-session-idle", "close sessions unused for this long")

func (Module) Idle(
	loader configs.Loader,
) Idle {
	if *idleFlag > 0 {
		return Idle(*idleFlag)
	}
	s := configs.First[string](loader, "session_idle")
	if s == "" {
		return Idle(DefaultIdle)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return Idle(d)
}

// Parallel bounds the runs in flight across all sessions.
type Parallel int

func (Module) Parallel(
	loader configs.Loader,
) Parallel {
	return configs.FirstOr(loader, "max_parallel_runs", Parallel(runtime.NumCPU()))
}

// Globals are the bindings every session starts with: the warehouse client,
// under its hook-bound name too when rebinding is configured, and the catalog
// helpers.
type Globals starlark.StringDict

func (Module) Globals(
	client *warehouses.Client,
	catalog catalogs.Globals,
	hookConfig hooks.Config,
) Globals {
	globals := Globals{
		ClientName: client,
	}
	if c := hookConfig.Client; c != nil && c.Bound != "" {
		globals[c.Bound] = client
	}
	for name, value := range catalog {
		globals[name] = value
	}
	return globals
}

func (Module) Manager(
	runner *runners.Runner,
	globals Globals,
	preludes Preludes,
	idle Idle,
	parallel Parallel,
	m *metrics.Metrics,
	logger logs.Logger,
) *Manager {
	return &Manager{
		Runner:   runner,
		Globals:  starlark.StringDict(globals),
		Preludes: preludes,
		Idle:     time.Duration(idle),
		Parallel: syncs.NewSemaphore(int(parallel)),
		Metrics:  m,
		Logger:   logger,
	}
}
