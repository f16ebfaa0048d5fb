package discord

import (
	"cam-guard/domain"
	"cam-guard/domain/event"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// toVoiceStateChanged converts a gateway update into a snapshot pair.
// BeforeUpdate is nil when the participant was not in voice, or not yet cached.
func toVoiceStateChanged(update *discordgo.VoiceStateUpdate, at time.Time) (event.VoiceStateChanged, bool) {
	if update == nil || update.VoiceState == nil || update.GuildID == "" || update.UserID == "" {
		return event.VoiceStateChanged{}, false
	}
	return event.VoiceStateChanged{
		GuildID: domain.GuildID(update.GuildID),
		UserID:  domain.UserID(update.UserID),
		Before:  toVoiceState(update.BeforeUpdate),
		After:   toVoiceState(update.VoiceState),
		At:      at,
	}, true
}

func toVoiceState(state *discordgo.VoiceState) domain.VoiceState {
	if state == nil {
		return domain.VoiceState{}
	}
	return domain.VoiceState{
		ChannelID: domain.ChannelID(state.ChannelID),
		CameraOn:  state.SelfVideo,
	}
}

// guildPermissions combines the @everyone role with the member's roles.
// The guild owner holds every permission.
func guildPermissions(guild *discordgo.Guild, userID string, roleIDs []string) int64 {
	if guild.OwnerID == userID {
		return discordgo.PermissionAll
	}
	roles := lo.SliceToMap(guild.Roles, func(role *discordgo.Role) (string, int64) {
		return role.ID, role.Permissions
	})
	// The @everyone role shares the guild's ID.
	perms := roles[guild.ID]
	for _, id := range roleIDs {
		perms |= roles[id]
	}
	return perms
}

func toPermissions(raw int64) domain.Permissions {
	var perms domain.Permission
	if raw&discordgo.PermissionAdministrator != 0 {
		perms |= domain.PermissionAdministrator
	}
	if raw&discordgo.PermissionManageServer != 0 {
		perms |= domain.PermissionManageGuild
	}
	return domain.Permissions(perms)
}
