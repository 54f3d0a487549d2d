package cogs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/database"
	"github.com/haytac/cogbot/pkg/interfaces"
)

const (
	keyInvitePermissions = "invite.permissions"
	keyInviteScopes      = "invite.scopes"
)

var validScopes = map[string]bool{
	"bot":                   true,
	"applications.commands": true,
	"identify":              true,
	"guilds":                true,
}

// InviteDefaults are used until an owner overrides them.
type InviteDefaults struct {
	ClientID    string
	Permissions int64
	Scopes      []string
}

// BotInvite posts the OAuth2 link that adds the bot to a server.
type BotInvite struct {
	settings interfaces.SettingsStore
	defaults InviteDefaults
}

// NewBotInvite creates the BotInvite cog.
func NewBotInvite(settings interfaces.SettingsStore, defaults InviteDefaults) *BotInvite {
	if len(defaults.Scopes) == 0 {
		defaults.Scopes = []string{"bot"}
	}
	return &BotInvite{settings: settings, defaults: defaults}
}

func (bi *BotInvite) Name() string        { return "BotInvite" }
func (bi *BotInvite) Description() string { return "Invite the bot to your server." }

func (bi *BotInvite) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "invite",
			Description: "Show the invite link of the bot.",
			Run:         bi.invite,
		},
		{
			Name:        "inviteset",
			Description: "Configure the invite link.",
			Checks:      []bot.Check{bot.OwnerOnly},
			Subcommands: []*bot.Command{
				{
					Name:        "permissions",
					Aliases:     []string{"perms"},
					Description: "Set the permission integer requested by the invite. Leave empty to reset.",
					Usage:       "[permissions]",
					Run:         bi.setPermissions,
				},
				{
					Name:        "scopes",
					Description: "Set the OAuth2 scopes requested by the invite. Leave empty to reset.",
					Usage:       "[scopes...]",
					Run:         bi.setScopes,
				},
			},
		},
	}
}

// InviteURL builds the OAuth2 authorize link.
func InviteURL(clientID string, scopes []string, permissions int64) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("scope", strings.Join(scopes, " "))
	q.Set("permissions", strconv.FormatInt(permissions, 10))
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}

func (bi *BotInvite) invite(c *bot.Context) error {
	ctx := c.Context()
	clientID := bi.defaults.ClientID
	if clientID == "" {
		clientID = c.Bot.SelfID()
	}

	perms := bi.defaults.Permissions
	if raw, ok, err := bi.settings.Get(ctx, database.ScopeGlobal, "", keyInvitePermissions); err != nil {
		return err
	} else if ok {
		if p, err := strconv.ParseInt(raw, 10, 64); err == nil {
			perms = p
		}
	}
	scopes := bi.defaults.Scopes
	if raw, ok, err := bi.settings.Get(ctx, database.ScopeGlobal, "", keyInviteScopes); err != nil {
		return err
	} else if ok && raw != "" {
		scopes = strings.Fields(raw)
	}

	link := InviteURL(clientID, scopes, perms)
	embed := bot.NewEmbed().
		SetTitle("Invite me!").
		SetURL(link).
		SetDescription(fmt.Sprintf("[Click here to add me to your server](%s)", link))
	_, err := c.SendEmbed(embed)
	return err
}

func (bi *BotInvite) setPermissions(c *bot.Context) error {
	ctx := c.Context()
	raw := c.Arg(0)
	if raw == "" {
		if err := bi.settings.Clear(ctx, database.ScopeGlobal, "", keyInvitePermissions); err != nil {
			return err
		}
		_, err := c.Send("Invite permissions reset to the default.")
		return err
	}
	p, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || p < 0 {
		_, err := c.Send("Permissions must be a non-negative integer.")
		return err
	}
	if err := bi.settings.Set(ctx, database.ScopeGlobal, "", keyInvitePermissions, strconv.FormatInt(p, 10)); err != nil {
		return err
	}
	_, err = c.Sendf("Invite permissions set to `%d`.", p)
	return err
}

func (bi *BotInvite) setScopes(c *bot.Context) error {
	ctx := c.Context()
	scopes := strings.Fields(strings.ToLower(c.Rest(0)))
	if len(scopes) == 0 {
		if err := bi.settings.Clear(ctx, database.ScopeGlobal, "", keyInviteScopes); err != nil {
			return err
		}
		_, err := c.Send("Invite scopes reset to the default.")
		return err
	}
	for _, s := range scopes {
		if !validScopes[s] {
			_, err := c.Sendf("`%s` is not a valid scope.", s)
			return err
		}
	}
	if err := bi.settings.Set(ctx, database.ScopeGlobal, "", keyInviteScopes, strings.Join(scopes, " ")); err != nil {
		return err
	}
	_, err := c.Sendf("Invite scopes set to `%s`.", strings.Join(scopes, " "))
	return err
}
