package osu

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const joinDateLayout = "2006-01-02 15:04:05"

// Comma formats an API integer with thousands separators. Missing values are "0".
func Comma(s string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return "0"
		}
		n = int64(math.Round(f))
	}
	return humanize.Comma(n)
}

// Decimal formats an API float with separators and two decimals.
func Decimal(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "0"
	}
	return humanize.CommafWithDigits(f, 2)
}

// Level renders "100.45" as "100 (45%)".
func Level(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "0"
	}
	whole := math.Floor(f)
	return fmt.Sprintf("%d (%d%%)", int64(whole), int64(math.Floor((f-whole)*100)))
}

// Accuracy renders a percentage with two decimals.
func Accuracy(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", f)
}

// Playtime renders a number of seconds as days, hours and minutes.
func Playtime(seconds string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(seconds), 10, 64)
	if err != nil || n <= 0 {
		return "0m"
	}
	d := time.Duration(n) * time.Second
	days := int64(d / (24 * time.Hour))
	hours := int64(d % (24 * time.Hour) / time.Hour)
	minutes := int64(d % time.Hour / time.Minute)
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// JoinedAgo renders the API join date relative to now, e.g. "3 years ago".
func JoinedAgo(joinDate string, now time.Time) string {
	t, err := time.ParseInLocation(joinDateLayout, joinDate, time.UTC)
	if err != nil {
		return joinDate
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Rank renders "#1,234" or "-" for players without a rank.
func Rank(s string) string {
	if strings.TrimSpace(s) == "" || s == "0" {
		return "-"
	}
	return "#" + Comma(s)
}

// CardURL fills {username} and {mode} in the card template.
func CardURL(tmpl, username string, mode Mode) string {
	return strings.NewReplacer(
		"{username}", url.QueryEscape(username),
		"{mode}", strconv.Itoa(int(mode)),
	).Replace(tmpl)
}

// ProfileURL links to the player's profile page.
func ProfileURL(userID string, mode Mode) string {
	modes := [...]string{"osu", "taiko", "fruits", "mania"}
	m := "osu"
	if int(mode) >= 0 && int(mode) < len(modes) {
		m = modes[mode]
	}
	return "https://osu.ppy.sh/users/" + url.PathEscape(userID) + "/" + m
}

// FlagURL returns the country flag image for a two-letter country code.
func FlagURL(country string) string {
	return "https://osu.ppy.sh/images/flags/" + strings.ToUpper(country) + ".png"
}
