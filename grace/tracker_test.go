package grace

import (
	"cam-guard/domain"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const graceDuration = 40 * time.Millisecond

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker := NewTracker(logs.GetLoggerFromLevel(slog.LevelDebug), graceDuration)
	t.Cleanup(tracker.Shutdown)
	return tracker
}

func counting(counter *atomic.Int32) Action {
	return func(ctx context.Context) error {
		counter.Add(1)
		return nil
	}
}

func TestTracker_FiresOnceAndRemovesEntry(t *testing.T) {
	req := require.New(t)
	tracker := newTestTracker(t)
	var fired atomic.Int32

	// Given a grace period started for alice
	task := tracker.Start("alice", counting(&fired))
	req.True(tracker.Pending("alice"))
	req.Equal(Pending, task.State())
	req.Equal(graceDuration, tracker.Duration())
	req.Equal(task.StartedAt.Add(tracker.Duration()), task.Deadline)

	// Then the action runs once after the grace duration and the entry is gone
	req.Eventually(func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	req.Eventually(func() bool { return !tracker.Pending("alice") }, time.Second, 5*time.Millisecond)
	req.Equal(Fired, task.State())

	time.Sleep(3 * graceDuration)
	req.Equal(int32(1), fired.Load())
	req.Equal(0, tracker.Len())
}

func TestTracker_CancelPreventsAction(t *testing.T) {
	req := require.New(t)
	tracker := newTestTracker(t)
	var fired atomic.Int32

	task := tracker.Start("alice", counting(&fired))

	// When the grace period is cancelled before expiry
	req.True(tracker.Cancel("alice"))

	// Then the action never runs
	time.Sleep(3 * graceDuration)
	req.Equal(int32(0), fired.Load())
	req.Equal(Cancelled, task.State())
	req.False(tracker.Pending("alice"))
}

func TestTracker_CancelUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	tracker := newTestTracker(t)

	req.False(tracker.Cancel("nobody"))
	req.False(tracker.Cancel("nobody"))
	req.Equal(0, tracker.Len())
}

func TestTracker_StartReplacesPreviousEntry(t *testing.T) {
	req := require.New(t)
	tracker := newTestTracker(t)
	var first, second atomic.Int32

	// Given a first grace period
	old := tracker.Start("alice", counting(&first))

	// When a second one is started for the same participant
	current := tracker.Start("alice", counting(&second))

	// Then the first is cancelled and only the second fires
	req.Equal(Cancelled, old.State())
	req.Equal(1, tracker.Len())
	req.Eventually(func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * graceDuration)
	req.Equal(int32(0), first.Load())
	req.Equal(int32(1), second.Load())
	req.Equal(Fired, current.State())
}

func TestTracker_CleanupIsUnconditional(t *testing.T) {
	req := require.New(t)
	tracker := newTestTracker(t)
	var calls atomic.Int32

	// Given actions failing with an error and with a panic
	tracker.Start("failing", func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("disconnect refused")
	})
	tracker.Start("panicking", func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	})

	// Then both entries are removed anyway
	req.Eventually(func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	req.Eventually(func() bool { return tracker.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestTracker_IndependentParticipants(t *testing.T) {
	req := require.New(t)
	tracker := newTestTracker(t)
	var alice, bob atomic.Int32

	tracker.Start("alice", counting(&alice))
	tracker.Start("bob", counting(&bob))
	req.Equal(2, tracker.Len())

	req.True(tracker.Cancel("alice"))

	req.Eventually(func() bool { return bob.Load() == 1 }, time.Second, 5*time.Millisecond)
	req.Equal(int32(0), alice.Load())
}

func TestTracker_ShutdownCancelsEverything(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker(logs.GetLoggerFromLevel(slog.LevelDebug), graceDuration)
	var fired atomic.Int32

	for i := 0; i < 5; i++ {
		tracker.Start(domain.UserID(fmt.Sprintf("user-%d", i)), counting(&fired))
	}
	tracker.Shutdown()

	time.Sleep(3 * graceDuration)
	req.Equal(int32(0), fired.Load())
	req.Equal(0, tracker.Len())
}

// TestTracker_AtMostOneEntryPerParticipant hammers the tracker with interleaved
// start and cancel calls, then checks that every task settled exactly once and
// that actions ran exactly as many times as tasks reached Fired.
func TestTracker_AtMostOneEntryPerParticipant(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker(logs.GetLoggerFromLevel(slog.LevelInfo), 20*time.Millisecond)
	defer tracker.Shutdown()

	participants := []domain.UserID{"a", "b", "c"}
	fired := make(map[domain.UserID]*atomic.Int32)
	for _, p := range participants {
		fired[p] = &atomic.Int32{}
	}

	var mu sync.Mutex
	tasks := make(map[domain.UserID][]*Task)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				p := participants[rnd.Intn(len(participants))]
				if rnd.Intn(2) == 0 {
					task := tracker.Start(p, counting(fired[p]))
					mu.Lock()
					tasks[p] = append(tasks[p], task)
					mu.Unlock()
				} else {
					tracker.Cancel(p)
				}
			}
		}(int64(g))
	}
	wg.Wait()

	req.Eventually(func() bool { return tracker.Len() == 0 }, time.Second, 5*time.Millisecond)

	for _, p := range participants {
		firedTasks := int32(0)
		for _, task := range tasks[p] {
			req.NotEqual(Pending, task.State())
			if task.State() == Fired {
				firedTasks++
			}
		}
		req.Eventually(func() bool { return fired[p].Load() == firedTasks }, time.Second, 5*time.Millisecond,
			"participant %s", p)
	}
}
