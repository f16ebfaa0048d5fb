package discord

import (
	"cam-guard/contract"
	"cam-guard/domain"
	"cam-guard/errors"
	"context"
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

var _ contract.Platform = (*Client)(nil)

// ChannelName prefers the session cache and falls back to the REST API.
func (c *Client) ChannelName(ctx context.Context, channelID domain.ChannelID) (string, error) {
	if channel, err := c.session.State.Channel(string(channelID)); err == nil {
		return channel.Name, nil
	}
	channel, err := c.session.Channel(string(channelID), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetching channel %s: %w", channelID, err)
	}
	return channel.Name, nil
}

// Member evaluates permissions at guild level: channel overwrites never affect exemption.
func (c *Client) Member(ctx context.Context, guildID domain.GuildID, userID domain.UserID) (domain.Member, error) {
	member, err := c.guildMember(ctx, string(guildID), string(userID))
	if err != nil {
		return domain.Member{}, err
	}
	guild, err := c.guild(ctx, string(guildID))
	if err != nil {
		return domain.Member{}, err
	}

	roles := lo.SliceToMap(guild.Roles, func(role *discordgo.Role) (string, *discordgo.Role) {
		return role.ID, role
	})
	roleNames := lo.FilterMap(member.Roles, func(id string, _ int) (string, bool) {
		role, ok := roles[id]
		if !ok {
			return "", false
		}
		return role.Name, true
	})

	return domain.Member{
		UserID:      userID,
		Permissions: toPermissions(guildPermissions(guild, string(userID), member.Roles)),
		RoleNames:   roleNames,
	}, nil
}

func (c *Client) guildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if member, err := c.session.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	member, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", errors.ErrMemberNotFound, userID)
		}
		return nil, fmt.Errorf("fetching member %s: %w", userID, err)
	}
	return member, nil
}

func (c *Client) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if guild, err := c.session.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		return guild, nil
	}
	guild, err := c.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching guild %s: %w", guildID, err)
	}
	return guild, nil
}

// DisconnectVoice moves the member out of voice; the reason lands in the audit log.
func (c *Client) DisconnectVoice(ctx context.Context, guildID domain.GuildID, userID domain.UserID, reason string) error {
	err := c.session.GuildMemberMove(string(guildID), string(userID), nil,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("disconnecting %s: %w", userID, err)
	}
	return nil
}

func (c *Client) SendDirectMessage(ctx context.Context, userID domain.UserID, content string) error {
	channel, err := c.session.UserChannelCreate(string(userID), discordgo.WithContext(ctx))
	if err != nil {
		return directMessageError(userID, err)
	}
	if _, err := c.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return directMessageError(userID, err)
	}
	return nil
}

func directMessageError(userID domain.UserID, err error) error {
	var restErr *discordgo.RESTError
	if goerrors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return fmt.Errorf("%w: %s", errors.ErrDirectMessagesClosed, userID)
	}
	return fmt.Errorf("messaging %s: %w", userID, err)
}

func isStatus(err error, status int) bool {
	var restErr *discordgo.RESTError
	return goerrors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == status
}
