package event

import "cam-guard/domain"

type Transition int

const (
	Ignored Transition = iota
	Join
	CameraToggle
	Leave
)

func (t Transition) String() string {
	switch t {
	case Join:
		return "join"
	case CameraToggle:
		return "camera_toggle"
	case Leave:
		return "leave"
	default:
		return "ignored"
	}
}

// Classify maps a snapshot pair onto the transition the presence rules act on.
//
// Moving into a monitored channel is a Join, including a switch between two
// monitored channels. Disconnecting from voice is always a Leave. Moving from a
// monitored channel into an unmonitored one is a Leave as well, so no grace
// period survives the participant leaving the monitored channel.
func Classify(change VoiceStateChanged, channels domain.MonitoredChannels) Transition {
	before, after := change.Before, change.After

	if !after.Connected() {
		if before.Connected() {
			return Leave
		}
		return Ignored
	}

	if change.ChannelChanged() {
		switch {
		case channels.Contains(after.ChannelID):
			return Join
		case channels.Contains(before.ChannelID):
			return Leave
		default:
			return Ignored
		}
	}

	if channels.Contains(after.ChannelID) && change.CameraChanged() {
		return CameraToggle
	}
	return Ignored
}
