// Package domain contains core concepts of the camera guard.
// This file defines participants, their voice snapshots and permission attributes.
// No runtime, network, or platform logic should be added here.
package domain

type UserID string

type GuildID string

// VoiceState is a point-in-time snapshot of a participant's voice presence.
// An empty ChannelID means the participant is not connected to any voice channel.
type VoiceState struct {
	ChannelID ChannelID
	CameraOn  bool
}

func (v VoiceState) Connected() bool {
	return v.ChannelID != ""
}

// Permission is a platform-agnostic capability bit.
type Permission uint8

const (
	PermissionAdministrator Permission = 1 << iota
	PermissionManageGuild
)

type Permissions Permission

func (p Permissions) Has(perm Permission) bool {
	return Permission(p)&perm != 0
}

// Member holds the attributes the exemption rules are evaluated against.
// RoleNames are the display names of the member's roles, not their IDs.
type Member struct {
	UserID      UserID
	Permissions Permissions
	RoleNames   []string
}
