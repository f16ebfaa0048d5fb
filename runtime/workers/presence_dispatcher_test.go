package workers

import (
	"bytes"
	"cam-guard/domain"
	"cam-guard/domain/event"
	"cam-guard/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu    sync.Mutex
	users []domain.UserID
	fail  map[domain.UserID]error
	panic map[domain.UserID]bool
}

func (h *recordingHandler) Handle(_ context.Context, change event.VoiceStateChanged) error {
	h.mu.Lock()
	h.users = append(h.users, change.UserID)
	h.mu.Unlock()
	if h.panic[change.UserID] {
		panic("malformed snapshot")
	}
	return h.fail[change.UserID]
}

func (h *recordingHandler) seen() []domain.UserID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.UserID(nil), h.users...)
}

func TestPresenceDispatcher_IsolatesFailures(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	events := make(chan event.VoiceStateChanged, 10)
	handler := &recordingHandler{
		fail:  map[domain.UserID]error{"bob": fmt.Errorf("lookup: %w", errors.ErrMemberNotFound)},
		panic: map[domain.UserID]bool{"carol": true},
	}
	dispatcher := NewPresenceDispatcher(log, events, handler)

	// Given events failing, panicking and succeeding, in that order
	for _, user := range []domain.UserID{"bob", "carol", "alice", "dave"} {
		events <- event.VoiceStateChanged{UserID: user}
	}
	close(events)

	// When the dispatcher drains the channel
	req.NoError(dispatcher.Run(context.Background()))

	// Then every event was handled, in arrival order
	req.Equal([]domain.UserID{"bob", "carol", "alice", "dave"}, handler.seen())
}

func TestPresenceDispatcher_DispatchReportsPanic(t *testing.T) {
	req := require.New(t)
	handler := &recordingHandler{panic: map[domain.UserID]bool{"carol": true}}
	dispatcher := NewPresenceDispatcher(slog.Default(), nil, handler)

	err := dispatcher.Dispatch(context.Background(), event.VoiceStateChanged{UserID: "carol"})
	req.ErrorIs(err, errors.ErrEventPanic)
}

func TestPresenceDispatcher_StopsOnContext(t *testing.T) {
	req := require.New(t)
	events := make(chan event.VoiceStateChanged)
	dispatcher := NewPresenceDispatcher(slog.Default(), events, &recordingHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(500 * time.Millisecond):
		req.Fail("dispatcher did not stop")
	}
}

func TestPresenceDispatcher_PassesContextToHandler(t *testing.T) {
	req := require.New(t)
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "guild-session")

	var got any
	dispatcher := NewPresenceDispatcher(slog.Default(), nil,
		event.HandlerFunc(func(ctx context.Context, _ event.VoiceStateChanged) error {
			got = ctx.Value(key{})
			return nil
		}))

	req.NoError(dispatcher.Dispatch(ctx, event.VoiceStateChanged{UserID: "alice"}))
	req.Equal("guild-session", got)
}

func TestPresenceDispatcher_LogsFailureWithEventTime(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	events := make(chan event.VoiceStateChanged, 1)
	handler := &recordingHandler{fail: map[domain.UserID]error{"bob": errors.ErrMemberNotFound}}
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	events <- event.VoiceStateChanged{UserID: "bob", At: at}
	close(events)
	req.NoError(NewPresenceDispatcher(log, events, handler).Run(context.Background()))

	req.Contains(out.String(), "Failed to handle voice state change")
	req.Contains(out.String(), "at=2026-03-04T05:06:07.000Z")
	req.Contains(out.String(), "user=bob")
}
