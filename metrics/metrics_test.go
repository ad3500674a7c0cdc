package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecord(t *testing.T) {
	m := New()
	m.RecordRun("ok", 10, time.Millisecond)
	m.RecordRun("ok", 20, time.Millisecond)
	m.RecordRun("error", 5, time.Millisecond)
	m.RecordViolation("DisallowedCall")

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("ok")); got != 2 {
		t.Fatalf("got %v", got)
	}
	if got := testutil.ToFloat64(m.Violations.WithLabelValues("DisallowedCall")); got != 1 {
		t.Fatalf("got %v", got)
	}
	if n := testutil.CollectAndCount(m.RunDuration); n != 1 {
		t.Fatalf("got %v", n)
	}
}

func TestTracer(t *testing.T) {
	tracer := NewTracer()
	ctx, span := tracer.Start(t.Context(), "run", AttrOutcome.String("ok"))
	defer span.End()
	if ctx == nil {
		t.Fatal()
	}
}
