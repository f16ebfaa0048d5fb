package moderation

import (
	"cam-guard/contract"
	"cam-guard/domain"
	"cam-guard/domain/event"
	"cam-guard/grace"
	"cam-guard/observability"
	"context"
	"fmt"
	"log/slog"
)

// PresenceHandler applies the camera rules to voice state changes.
// It owns no state besides the grace tracker it drives.
type PresenceHandler struct {
	log       *slog.Logger
	channels  domain.MonitoredChannels
	exemption ExemptionChecker
	tracker   *grace.Tracker
	platform  contract.Platform
	enforcer  *Enforcer
}

func NewPresenceHandler(log *slog.Logger, channels domain.MonitoredChannels, exemption ExemptionChecker,
	tracker *grace.Tracker, platform contract.Platform, enforcer *Enforcer) *PresenceHandler {
	return &PresenceHandler{
		log:       log,
		channels:  channels,
		exemption: exemption,
		tracker:   tracker,
		platform:  platform,
		enforcer:  enforcer,
	}
}

func (h *PresenceHandler) Handle(ctx context.Context, change event.VoiceStateChanged) error {
	transition := event.Classify(change, h.channels)

	var err error
	switch transition {
	case event.Join:
		err = h.onJoin(ctx, change)
	case event.CameraToggle:
		err = h.onCameraToggle(ctx, change)
	case event.Leave:
		h.tracker.Cancel(change.UserID)
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	observability.PresenceEvents.WithLabelValues(transition.String(), result).Inc()
	return err
}

// onJoin re-evaluates the camera rule for the destination channel, also when
// the participant arrives from another monitored channel.
// A camera already on only ever cancels, so it never depends on the member lookup.
func (h *PresenceHandler) onJoin(ctx context.Context, change event.VoiceStateChanged) error {
	if change.After.CameraOn {
		h.tracker.Cancel(change.UserID)
		return nil
	}

	exempt, err := h.isExempt(ctx, change)
	if err != nil {
		// Any entry left targets the channel the participant just left.
		h.tracker.Cancel(change.UserID)
		return err
	}
	if exempt {
		h.log.Debug("Exempt participant joined monitored channel",
			"user", change.UserID, "channel", change.After.ChannelID)
		return nil
	}
	h.startGracePeriod(change)
	return nil
}

func (h *PresenceHandler) onCameraToggle(ctx context.Context, change event.VoiceStateChanged) error {
	// Turning the camera on only ever cancels, which is a no-op for exempt participants.
	if change.After.CameraOn {
		h.tracker.Cancel(change.UserID)
		return nil
	}

	exempt, err := h.isExempt(ctx, change)
	if err != nil {
		return err
	}
	if exempt {
		return nil
	}
	h.startGracePeriod(change)
	return nil
}

func (h *PresenceHandler) startGracePeriod(change event.VoiceStateChanged) {
	target := Target{
		GuildID:   change.GuildID,
		UserID:    change.UserID,
		ChannelID: change.After.ChannelID,
	}
	h.tracker.Start(change.UserID, func(ctx context.Context) error {
		h.enforcer.Enforce(ctx, target)
		return nil
	})
}

func (h *PresenceHandler) isExempt(ctx context.Context, change event.VoiceStateChanged) (bool, error) {
	member, err := h.platform.Member(ctx, change.GuildID, change.UserID)
	if err != nil {
		return false, fmt.Errorf("resolving member %s: %w", change.UserID, err)
	}
	return h.exemption.IsExempt(member), nil
}
