package audits

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/taibox/analyzers"
)

// Event records one rejected snippet.
type Event struct {
	ID          string    `json:"id"`
	Session     string    `json:"session"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	Line        int32     `json:"line"`
	Col         int32     `json:"col"`
	SnippetHash string    `json:"snippet_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewEvent(session string, snippet string, v *analyzers.Violation) Event {
	return Event{
		ID:          uuid.New().String(),
		Session:     session,
		Kind:        v.Kind.String(),
		Name:        v.Name,
		Line:        v.Pos.Line,
		Col:         v.Pos.Col,
		SnippetHash: HashSnippet(snippet),
		CreatedAt:   time.Now(),
	}
}

func HashSnippet(snippet string) string {
	sum := sha256.Sum256([]byte(snippet))
	return hex.EncodeToString(sum[:])
}

// Sink receives audit events. Record must not block the run for long and
// never fails the run.
type Sink interface {
	Record(ctx context.Context, event Event)
}

type SinkFunc func(ctx context.Context, event Event)

var _ Sink = SinkFunc(nil)

func (f SinkFunc) Record(ctx context.Context, event Event) {
	f(ctx, event)
}

// Multi fans events out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, event Event) {
		for _, sink := range sinks {
			if sink != nil {
				sink.Record(ctx, event)
			}
		}
	})
}
