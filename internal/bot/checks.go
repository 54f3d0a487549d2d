package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ErrCheckFailed is wrapped by every CheckError.
var ErrCheckFailed = errors.New("command check failed")

// CheckError is returned by a Check. Message is shown to the user when set.
type CheckError struct {
	Message string
}

func (e *CheckError) Error() string {
	if e.Message == "" {
		return ErrCheckFailed.Error()
	}
	return e.Message
}

func (e *CheckError) Unwrap() error {
	return ErrCheckFailed
}

// Check decides whether a command may run in the given context.
type Check func(c *Context) error

// OwnerOnly allows only bot owners. Failures are silent.
func OwnerOnly(c *Context) error {
	if c.IsOwner() {
		return nil
	}
	return &CheckError{}
}

// GuildOnly rejects direct messages.
func GuildOnly(c *Context) error {
	if c.Message.GuildID == "" {
		return &CheckError{Message: "That command is not available in DMs."}
	}
	return nil
}

// AdminOnly allows owners and members with Administrator or Manage Server.
func AdminOnly(c *Context) error {
	if c.IsOwner() {
		return nil
	}
	perms, err := c.Session.UserChannelPermissions(c.Message.Author.ID, c.Message.ChannelID)
	if err != nil {
		return fmt.Errorf("admin check: %w", err)
	}
	if perms&discordgo.PermissionAdministrator != 0 || perms&discordgo.PermissionManageServer != 0 {
		return nil
	}
	return &CheckError{}
}

var permissionNames = []struct {
	perm int64
	name string
}{
	{discordgo.PermissionAddReactions, "Add Reactions"},
	{discordgo.PermissionSendMessages, "Send Messages"},
	{discordgo.PermissionEmbedLinks, "Embed Links"},
	{discordgo.PermissionAttachFiles, "Attach Files"},
	{discordgo.PermissionManageMessages, "Manage Messages"},
	{discordgo.PermissionUseExternalEmojis, "Use External Emojis"},
	{discordgo.PermissionReadMessageHistory, "Read Message History"},
}

// PermissionNames lists the human readable names of the bits set in perms.
func PermissionNames(perms int64) []string {
	var names []string
	for _, p := range permissionNames {
		if perms&p.perm != 0 {
			names = append(names, p.name)
		}
	}
	return names
}

// BotHasPermissions requires the bot to hold perms in the invoking channel.
func BotHasPermissions(perms int64) Check {
	return func(c *Context) error {
		if c.Message.GuildID == "" {
			return nil
		}
		have, err := c.BotPermissions(c.Message.ChannelID)
		if err != nil {
			return fmt.Errorf("bot permission check: %w", err)
		}
		if have&discordgo.PermissionAdministrator != 0 {
			return nil
		}
		if missing := perms &^ have; missing != 0 {
			return &CheckError{Message: fmt.Sprintf("I need the following permissions to do that: %s.",
				strings.Join(PermissionNames(missing), ", "))}
		}
		return nil
	}
}
