package event

import "context"

// Handler processes one voice state change.
// A returned error concerns that event only; the caller logs it and moves on.
type Handler interface {
	Handle(ctx context.Context, change VoiceStateChanged) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, change VoiceStateChanged) error

func (f HandlerFunc) Handle(ctx context.Context, change VoiceStateChanged) error {
	return f(ctx, change)
}
