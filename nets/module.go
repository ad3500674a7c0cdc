// Package nets dials database connections, directly for local and private
// addresses and through the configured proxy otherwise.
package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
