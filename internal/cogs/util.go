// Package cogs contains the command groups the bot ships with.
package cogs

import (
	"regexp"
	"strings"
)

var (
	channelMentionRe = regexp.MustCompile(`^<#([0-9]+)>$`)
	userMentionRe    = regexp.MustCompile(`^<@!?([0-9]+)>$`)
	snowflakeRe      = regexp.MustCompile(`^[0-9]{15,21}$`)
)

// parseBool accepts the usual ways people type yes and no.
func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "on", "1", "enable", "enabled":
		return true, true
	case "false", "no", "n", "off", "0", "disable", "disabled":
		return false, true
	}
	return false, false
}

// parseChannel reads a channel mention or a raw channel ID.
func parseChannel(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if m := channelMentionRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if snowflakeRe.MatchString(s) {
		return s, true
	}
	return "", false
}

// isUserMention reports whether s mentions a user.
func isUserMention(s string) bool {
	return userMentionRe.MatchString(strings.TrimSpace(s))
}

func jumpURL(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}
