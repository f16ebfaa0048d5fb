package workers

import (
	"cam-guard/domain/event"
	"cam-guard/errors"
	"context"
	"fmt"
	"log/slog"
)

// PresenceDispatcher feeds voice state changes to the handler one at a time, in arrival order.
// Each event is isolated: a failure or a panic is logged and the next event is processed normally.
type PresenceDispatcher struct {
	log     *slog.Logger
	events  <-chan event.VoiceStateChanged
	handler event.Handler
}

func NewPresenceDispatcher(log *slog.Logger, events <-chan event.VoiceStateChanged, handler event.Handler) *PresenceDispatcher {
	return &PresenceDispatcher{log: log, events: events, handler: handler}
}

func (w *PresenceDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping presence dispatcher")
			return ctx.Err()
		case change, ok := <-w.events:
			if !ok {
				w.log.Debug("Presence channel is closed")
				return nil
			}
			if err := w.Dispatch(ctx, change); err != nil {
				w.log.Error("Failed to handle voice state change",
					"event", change.Type(),
					"user", change.UserID,
					"guild", change.GuildID,
					"before", change.Before.ChannelID,
					"after", change.After.ChannelID,
					"at", change.At,
					"error", err)
			}
		}
	}
}

// Dispatch runs the handler for a single change and turns a panic into an error.
func (w *PresenceDispatcher) Dispatch(ctx context.Context, change event.VoiceStateChanged) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrEventPanic, r)
		}
	}()
	return w.handler.Handle(ctx, change)
}
