// Package landlocks lets the daemon drop filesystem write access once it has
// started. Snippets never touch the filesystem through the engine; this
// bounds what a bug in the host can do.
package landlocks

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
)

type Module struct {
	dscope.Module
}

var enableFlag = cmds.Switch("-landlock", "restrict the process with Landlock before serving")

// Writable are the directories that stay writable after Restrict.
type Writable []string

func (Module) Writable(
	loader configs.Loader,
) Writable {
	return configs.First[Writable](loader, "landlock_writable")
}

// Restrict applies the restriction when -landlock is given.
type Restrict func() error

func (Module) Restrict(
	writable Writable,
	logger logs.Logger,
) Restrict {
	return func() error {
		if !*enableFlag {
			return nil
		}
		return Apply(writable, logger)
	}
}
