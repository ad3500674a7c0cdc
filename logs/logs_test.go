package logs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/modes"
)

var errTest = errors.New("test")

func TestSpansAndSessions(t *testing.T) {
	level.Set(slog.LevelDebug)
	defer level.Set(slog.LevelInfo)

	buf := new(bytes.Buffer)
	dscope.New(new(Module), modes.ForTest(t)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		newSpan NewSpan,
		logger Logger,
	) {
		ctx := WithSession(context.Background(), "s1")
		ctx1, span1 := newSpan(ctx, "")
		ctx2, span2 := newSpan(ctx1, "")
		_, span3 := newSpan(ctx2, span1)
		logger.InfoContext(ctx2, "hello")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("got %q", lines)
		}
		for i, want := range [][]string{
			{"logs.span=" + string(span1), "session=s1"},
			{"logs.span=" + string(span2), "parent=" + string(span1)},
			{"logs.span=" + string(span3), "parent=" + string(span1), "creator=" + string(span2)},
			{"msg=hello", "logs.span=" + string(span2), "session=s1"},
		} {
			for _, w := range want {
				if !strings.Contains(lines[i], w) {
					t.Fatalf("line %d: %q missing %q", i, lines[i], w)
				}
			}
		}
		if strings.Contains(lines[1], "creator=") {
			t.Fatalf("got %q", lines[1])
		}

		// attributes survive With
		buf.Reset()
		logger.With("k", "v").InfoContext(ctx, "with")
		if !strings.Contains(buf.String(), "session=s1") || !strings.Contains(buf.String(), "k=v") {
			t.Fatalf("got %q", buf.String())
		}
	})
}

func TestWrapSpan(t *testing.T) {
	if err := WrapSpan(context.Background(), errTest); err != errTest {
		t.Fatalf("got %v", err)
	}
	if WrapSpan(context.Background(), nil) != nil {
		t.Fatal("non-nil")
	}
	ctx := context.WithValue(WithSession(context.Background(), "s1"), SpanKey, Span("abc"))
	err := WrapSpan(ctx, errTest)
	if !errors.Is(err, errTest) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "(span abc, session s1)") {
		t.Fatalf("got %v", err)
	}
}

func TestJournalKey(t *testing.T) {
	for key, want := range map[string]string{
		"logs.span":  "LOGS_SPAN",
		"session":    "SESSION",
		"max_rows":   "MAX_ROWS",
		"HTTP2-conn": "HTTP2_CONN",
	} {
		if got := toJournalKey(key); got != want {
			t.Fatalf("%s: got %s", key, got)
		}
	}
}
