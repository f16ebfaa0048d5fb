package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct{ calls atomic.Int32 }

func (f *fakeTracker) Len() int {
	f.calls.Add(1)
	return 2
}

type fakeGateway bool

func (g fakeGateway) Online() bool { return bool(g) }

func TestHeartbeatWorker_Beats(t *testing.T) {
	req := require.New(t)
	tracker := &fakeTracker{}
	worker := NewHeartbeatWorker(logs.GetLoggerFromLevel(slog.LevelDebug), 10*time.Millisecond, tracker, fakeGateway(true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then the tracker is polled on every tick
	req.Eventually(func() bool { return tracker.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	req.ErrorIs(<-done, context.Canceled)
}
