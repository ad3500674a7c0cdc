package apis

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
	"github.com/reusee/taibox/sessions"
)

type Module struct {
	dscope.Module
	Sessions sessions.Module
}

type ListenAddr string

var _ configs.Configurable = ListenAddr("")

func (l ListenAddr) ConfigExpr() string {
	return "ListenAddr"
}

const DefaultListenAddr = "127.0.0.1:8077"

var listenFlag = cmds.Var[string]("-listen", "HTTP listen address")

func (Module) ListenAddr(
	loader configs.Loader,
) ListenAddr {
	if *listenFlag != "" {
		return ListenAddr(*listenFlag)
	}
	return configs.FirstOr[ListenAddr](loader, "listen_addr", DefaultListenAddr)
}

// MaxConnections caps concurrently accepted connections.
type MaxConnections int

const DefaultMaxConnections = 256

func (Module) MaxConnections(
	loader configs.Loader,
) MaxConnections {
	return configs.FirstOr[MaxConnections](loader, "max_connections", DefaultMaxConnections)
}

func (Module) Server(
	manager *sessions.Manager,
	m *metrics.Metrics,
	logger logs.Logger,
) *Server {
	return NewServer(manager, m, logger)
}
