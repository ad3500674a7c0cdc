package audits

import (
	"context"

	"github.com/reusee/taibox/logs"
)

type LogSink struct {
	Logger logs.Logger
}

var _ Sink = LogSink{}

func (l LogSink) Record(ctx context.Context, event Event) {
	l.Logger.WarnContext(ctx, "snippet rejected",
		"id", event.ID,
		"session", event.Session,
		"kind", event.Kind,
		"name", event.Name,
		"line", event.Line,
		"col", event.Col,
		"snippet_sha256", event.SnippetHash,
	)
}
