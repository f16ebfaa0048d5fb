package grace

import (
	"cam-guard/domain"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type State int32

const (
	Pending State = iota
	Fired
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is one scheduled enforcement for a participant.
// It leaves Pending exactly once, either towards Fired or towards Cancelled.
type Task struct {
	ID            uuid.UUID
	ParticipantID domain.UserID
	StartedAt     time.Time
	Deadline      time.Time

	state atomic.Int32
	timer *time.Timer
}

func newTask(participantID domain.UserID, now time.Time, d time.Duration) *Task {
	return &Task{
		ID:            uuid.New(),
		ParticipantID: participantID,
		StartedAt:     now,
		Deadline:      now.Add(d),
	}
}

func (t *Task) State() State {
	return State(t.state.Load())
}

// cancel moves a pending task to Cancelled and stops its timer.
// It reports false if the task already fired or was cancelled.
func (t *Task) cancel() bool {
	if !t.state.CompareAndSwap(int32(Pending), int32(Cancelled)) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

func (t *Task) markFired() bool {
	return t.state.CompareAndSwap(int32(Pending), int32(Fired))
}
