package metrics

import (
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

func (Module) Metrics() *Metrics {
	return New()
}

func (Module) Tracer() *Tracer {
	return NewTracer()
}
