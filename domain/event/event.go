package event

import (
	"cam-guard/domain"
	"time"
)

type Type string

const VoiceStateChangedType Type = "VOICE_STATE_CHANGED"

// VoiceStateChanged carries the previous and new voice snapshot of one participant.
// Before is the zero VoiceState when the participant was not known to be in voice.
type VoiceStateChanged struct {
	GuildID domain.GuildID
	UserID  domain.UserID
	Before  domain.VoiceState
	After   domain.VoiceState
	At      time.Time
}

func (v VoiceStateChanged) Type() Type {
	return VoiceStateChangedType
}

func (v VoiceStateChanged) ChannelChanged() bool {
	return v.Before.ChannelID != v.After.ChannelID
}

func (v VoiceStateChanged) CameraChanged() bool {
	return v.Before.CameraOn != v.After.CameraOn
}
