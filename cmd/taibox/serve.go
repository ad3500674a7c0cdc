package main

import (
	"context"
	"net"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/apis"
	"github.com/reusee/taibox/audits"
	"github.com/reusee/taibox/landlocks"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/sessions"
)

func serve(ctx context.Context, scope dscope.Scope) (code int) {
	scope.Call(func(
		server *apis.Server,
		manager *sessions.Manager,
		addr apis.ListenAddr,
		maxConns apis.MaxConnections,
		restrict landlocks.Restrict,
		logger logs.Logger,
	) {
		defer flushAudits(scope)

		ln, err := net.Listen("tcp", string(addr))
		if err != nil {
			fatal(err)
		}
		// connections and files the daemon needs are open by now
		if err := restrict(); err != nil {
			fatal(err)
		}

		manager.StartSweeper(ctx, time.Minute)
		if err := server.Serve(ctx, ln, int(maxConns)); err != nil {
			logger.Error("serve", "error", err)
			code = 1
		}
	})
	return
}

func flushAudits(scope dscope.Scope) {
	scope.Call(func(
		writer *audits.Writer,
		logger logs.Logger,
	) {
		if writer == nil {
			return
		}
		if !writer.Flush(10 * time.Second) {
			logger.Warn("audit events dropped at shutdown")
		}
	})
}
