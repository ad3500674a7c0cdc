package modes

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/cmds"
)

var devFlag = cmds.Switch("-dev", "development mode, no proxies")

type Module struct {
	dscope.Module
	t    *testing.T
	mode Mode
}

// ForProduction is the mode of the taibox binary; -dev on the command line
// selects development instead.
func ForProduction() Module {
	mode := ModeProduction
	if *devFlag {
		mode = ModeDevelopment
	}
	return Module{
		mode: mode,
	}
}

func ForTest(t *testing.T) Module {
	return Module{
		t:    t,
		mode: ModeTest,
	}
}

// T is nil outside tests.
func (m Module) T() *testing.T {
	return m.t
}

func (m Module) Mode() Mode {
	return m.mode
}
