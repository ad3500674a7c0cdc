package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/reusee/taibox"

// Tracer starts spans on the global TracerProvider. Without a configured
// provider the spans are no-ops.
type Tracer struct {
	tracer trace.Tracer
}

func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "taibox."+name,
		trace.WithAttributes(attrs...),
	)
}

var (
	AttrSession     = attribute.Key("taibox.session")
	AttrSnippetHash = attribute.Key("taibox.snippet.sha256")
	AttrSnippetSize = attribute.Key("taibox.snippet.size")
	AttrOutcome     = attribute.Key("taibox.outcome")
	AttrKind        = attribute.Key("taibox.error.kind")
)
