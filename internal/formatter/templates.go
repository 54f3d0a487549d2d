package formatter

// ReactLogDescription renders the body of a reaction log entry.
// Fields: ChannelID, Emoji, JumpURL.
const ReactLogDescription = `**Channel:** <#{{.ChannelID}}>
**Emoji:** {{.Emoji}}
**Message:** [Jump to Message ►]({{.JumpURL}})`

// OsuEvents renders the recent events of an osu! profile.
// Fields: Events []string (HTML fragments).
const OsuEvents = `{{range .Events}}:small_orange_diamond: {{stripHTML . | summarize 200}}
{{else}}No recent events.{{end}}`
