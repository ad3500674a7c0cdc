package audits

import (
	"context"
	"sync"
	"time"

	"github.com/reusee/taibox/logs"
)

type WriteFunc func(ctx context.Context, event Event) error

// Writer persists events on a background goroutine. Record never blocks:
// events beyond the buffer are dropped and counted.
type Writer struct {
	write     WriteFunc
	logger    logs.Logger
	ch        chan Event
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	onDrop    func()

	MaxRetries   int
	Backoff      time.Duration
	WriteTimeout time.Duration
}

var _ Sink = new(Writer)

func NewWriter(write WriteFunc, bufferSize int, logger logs.Logger, onDrop func()) *Writer {
	if bufferSize < 1 {
		bufferSize = 1024
	}
	if onDrop == nil {
		onDrop = func() {}
	}
	return &Writer{
		write:        write,
		logger:       logger,
		ch:           make(chan Event, bufferSize),
		done:         make(chan struct{}),
		onDrop:       onDrop,
		MaxRetries:   3,
		Backoff:      100 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

func (w *Writer) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Writer) Record(_ context.Context, event Event) {
	select {
	case w.ch <- event:
	default:
		w.onDrop()
		w.logger.Warn("audit buffer full, dropping event", "id", event.ID)
	}
}

// Flush stops accepting work, drains the buffer and waits up to timeout.
func (w *Writer) Flush(timeout time.Duration) bool {
	w.closeOnce.Do(func() {
		close(w.done)
	})

	doneCh := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
		return true
	case <-time.After(timeout):
		w.logger.Warn("audit flush timed out")
		return false
	}
}

func (w *Writer) loop() {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.ch:
			w.writeWithRetry(event)
		case <-w.done:
			for {
				select {
				case event := <-w.ch:
					w.writeWithRetry(event)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) writeWithRetry(event Event) {
	for attempt := 0; attempt <= w.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), w.WriteTimeout)
		err := w.write(ctx, event)
		cancel()
		if err == nil {
			return
		}

		if attempt < w.MaxRetries {
			backoff := w.Backoff << attempt
			w.logger.Warn("audit write failed, retrying",
				"error", err,
				"id", event.ID,
				"attempt", attempt+1,
				"backoff", backoff,
			)
			time.Sleep(backoff)
		} else {
			w.onDrop()
			w.logger.Error("audit write failed",
				"error", err,
				"id", event.ID,
			)
		}
	}
}
