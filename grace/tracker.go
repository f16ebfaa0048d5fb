// Package grace keeps the per-participant grace periods of monitored voice channels.
// A participant owns at most one pending grace period; starting a new one replaces the old one.
package grace

import (
	"cam-guard/domain"
	"cam-guard/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Action is the deferred work run when a grace period expires.
type Action func(ctx context.Context) error

type Tracker struct {
	mu       sync.Mutex
	log      *slog.Logger
	duration time.Duration
	entries  map[domain.UserID]*Task
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewTracker(log *slog.Logger, duration time.Duration) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		log:      log,
		duration: duration,
		entries:  make(map[domain.UserID]*Task),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (t *Tracker) Duration() time.Duration {
	return t.duration
}

// Start cancels any pending grace period of the participant and schedules action
// to run once after the grace duration. The replacement happens under one lock,
// so concurrent events for the same participant can neither lose a cancel nor fire twice.
func (t *Tracker) Start(participantID domain.UserID, action Action) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	if previous, ok := t.entries[participantID]; ok {
		if previous.cancel() {
			observability.GracePeriodsCancelled.Inc()
		}
		delete(t.entries, participantID)
		t.log.Debug("Grace period replaced", "user", participantID, "grace_id", previous.ID)
	}

	task := newTask(participantID, time.Now(), t.duration)
	// The callback blocks on t.mu until Start returns, so task.timer is set before fire reads state.
	task.timer = time.AfterFunc(t.duration, func() { t.fire(task, action) })
	t.entries[participantID] = task

	observability.GracePeriodsStarted.Inc()
	observability.GracePeriodsPending.Set(float64(len(t.entries)))
	t.log.Info("Grace period started",
		"user", participantID,
		"grace_id", task.ID,
		"deadline", task.Deadline.UTC())
	return task
}

// Cancel drops the pending grace period of the participant.
// It reports whether one was pending; cancelling nothing is a no-op.
func (t *Tracker) Cancel(participantID domain.UserID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.entries[participantID]
	if !ok {
		return false
	}
	delete(t.entries, participantID)
	observability.GracePeriodsPending.Set(float64(len(t.entries)))

	if !task.cancel() {
		return false
	}
	observability.GracePeriodsCancelled.Inc()
	t.log.Info("Grace period cancelled", "user", participantID, "grace_id", task.ID)
	return true
}

// Pending reports whether the participant currently has a live grace period.
func (t *Tracker) Pending(participantID domain.UserID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[participantID]
	return ok
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Shutdown cancels every pending grace period and the context of running actions.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, task := range t.entries {
		task.cancel()
		delete(t.entries, id)
	}
	observability.GracePeriodsPending.Set(0)
	t.cancel()
}

// fire removes the entry before running the action: cleanup does not depend on the action's outcome.
func (t *Tracker) fire(task *Task, action Action) {
	t.mu.Lock()
	if !task.markFired() {
		t.mu.Unlock()
		return
	}
	if current, ok := t.entries[task.ParticipantID]; ok && current == task {
		delete(t.entries, task.ParticipantID)
	}
	observability.GracePeriodsPending.Set(float64(len(t.entries)))
	t.mu.Unlock()

	observability.GracePeriodsExpired.Inc()
	t.log.Info("Grace period expired", "user", task.ParticipantID, "grace_id", task.ID)

	if err := t.run(action); err != nil {
		t.log.Error("Grace period action failed",
			"user", task.ParticipantID,
			"grace_id", task.ID,
			"error", err)
	}
}

func (t *Tracker) run(action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panic: %v", r)
		}
	}()
	return action(t.ctx)
}
