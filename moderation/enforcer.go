package moderation

import (
	"bytes"
	"cam-guard/contract"
	"cam-guard/domain"
	"cam-guard/errors"
	"cam-guard/observability"
	"context"
	goerrors "errors"
	"io"
	"log/slog"
	"text/template"
	"time"
)

const FallbackChannelName = "the voice channel"

// Target identifies who gets disconnected and from which monitored channel.
type Target struct {
	GuildID   domain.GuildID
	UserID    domain.UserID
	ChannelID domain.ChannelID
}

// Outcome reports which enforcement steps succeeded.
type Outcome struct {
	ChannelName  string
	Disconnected bool
	Notified     bool
}

// NotificationData is the data available to the notification template.
type NotificationData struct {
	User        domain.UserID
	Channel     string
	GracePeriod time.Duration
}

type Enforcer struct {
	log          *slog.Logger
	platform     contract.Platform
	reason       string
	notification *template.Template
	gracePeriod  time.Duration
}

func NewEnforcer(log *slog.Logger, platform contract.Platform,
	reason string, notification *template.Template, gracePeriod time.Duration) *Enforcer {
	return &Enforcer{
		log:          log,
		platform:     platform,
		reason:       reason,
		notification: notification,
		gracePeriod:  gracePeriod,
	}
}

// ParseNotification compiles the direct message template sent after a disconnect
// and renders it once against sample data, so unknown fields fail at startup.
func ParseNotification(text string) (*template.Template, error) {
	tmpl, err := template.New("notification").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}
	sample := NotificationData{User: "user", Channel: FallbackChannelName, GracePeriod: 10 * time.Second}
	if err := tmpl.Execute(io.Discard, sample); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Enforce disconnects the target from voice and tells them why.
// Both steps are best-effort: failures are logged and never returned.
func (e *Enforcer) Enforce(ctx context.Context, target Target) Outcome {
	logger := e.log.With("user", target.UserID, "channel", target.ChannelID)

	outcome := Outcome{ChannelName: e.channelName(ctx, target.ChannelID, logger)}

	if err := e.platform.DisconnectVoice(ctx, target.GuildID, target.UserID, e.reason); err != nil {
		observability.Enforcements.WithLabelValues("disconnect", "failure").Inc()
		logger.Error("Failed to disconnect participant", "error", err)
	} else {
		outcome.Disconnected = true
		observability.Enforcements.WithLabelValues("disconnect", "success").Inc()
		logger.Info("Participant disconnected for missing camera", "channel_name", outcome.ChannelName)
	}

	outcome.Notified = e.notify(ctx, target, outcome.ChannelName, logger)
	return outcome
}

func (e *Enforcer) channelName(ctx context.Context, channelID domain.ChannelID, logger *slog.Logger) string {
	name, err := e.platform.ChannelName(ctx, channelID)
	if err != nil || name == "" {
		logger.Debug("Channel name unresolved, using fallback", "error", err)
		return FallbackChannelName
	}
	return name
}

func (e *Enforcer) notify(ctx context.Context, target Target, channelName string, logger *slog.Logger) bool {
	var content bytes.Buffer
	err := e.notification.Execute(&content, NotificationData{
		User:        target.UserID,
		Channel:     channelName,
		GracePeriod: e.gracePeriod,
	})
	if err != nil {
		observability.Enforcements.WithLabelValues("notify", "failure").Inc()
		logger.Error("Failed to render notification", "error", err)
		return false
	}

	err = e.platform.SendDirectMessage(ctx, target.UserID, content.String())
	switch {
	case err == nil:
		observability.Enforcements.WithLabelValues("notify", "success").Inc()
		return true
	case goerrors.Is(err, errors.ErrDirectMessagesClosed):
		observability.Enforcements.WithLabelValues("notify", "refused").Inc()
		logger.Info("Participant does not accept direct messages")
	default:
		observability.Enforcements.WithLabelValues("notify", "failure").Inc()
		logger.Warn("Failed to notify participant", "error", err)
	}
	return false
}
