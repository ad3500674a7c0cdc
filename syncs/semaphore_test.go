package syncs

import (
	"context"
	"errors"
	"testing"
)

func TestSemaphore(t *testing.T) {
	sem := NewSemaphore(1)
	sem.Acquire()
	if sem.TryAcquire() {
		t.Fatal("should be full")
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := sem.AcquireContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	sem.Release()
	if err := sem.AcquireContext(t.Context()); err != nil {
		t.Fatal(err)
	}
	sem.Release()

	if cap(NewSemaphore(0)) != 1 {
		t.Fatal("zero capacity")
	}
}
