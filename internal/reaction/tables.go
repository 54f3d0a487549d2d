package reaction

const (
	// Keycap is the combining enclosing keycap (U+20E3). It trails every
	// keycap digit emoji, so it legitimately repeats inside a plan.
	Keycap = "\u20e3"

	// placeholder stands in for an extracted custom emoji token.
	placeholder = '\ufffc'
)

// substitutionOrder is the order in which repeated characters are resolved.
const substitutionOrder = "abcdefghijklmnopqrstuvwxyz0123456789!?"

// candidates lists the alternate renderings of every character, most
// convincing first. The first entry is the default rendering.
var candidates = map[rune][]string{
	'a': {"🇦", "🅰", "🍙", "🔼", "4⃣"},
	'b': {"🇧", "🅱", "8⃣"},
	'c': {"🇨", "©", "🗜"},
	'd': {"🇩", "↩"},
	'e': {"🇪", "3⃣", "📧", "💶"},
	'f': {"🇫", "🎏"},
	'g': {"🇬", "🗜", "6⃣", "9⃣", "⛽"},
	'h': {"🇭", "♓"},
	'i': {"🇮", "ℹ", "🚹", "1⃣"},
	'j': {"🇯", "🗾"},
	'k': {"🇰", "🎋"},
	'l': {"🇱", "1⃣", "🇮", "👢", "💷"},
	'm': {"🇲", "Ⓜ", "📉"},
	'n': {"🇳", "♑", "🎵"},
	'o': {"🇴", "🅾", "0⃣", "⭕", "🔘", "⏺", "⚪", "⚫", "🔵", "🔴", "💫"},
	'p': {"🇵", "🅿"},
	'q': {"🇶", "♌"},
	'r': {"🇷", "®"},
	's': {"🇸", "💲", "5⃣", "⚡", "💰", "💵"},
	't': {"🇹", "✝", "➕", "🎚", "🌴", "7⃣"},
	'u': {"🇺", "⛎", "🐉"},
	'v': {"🇻", "♈", "☑"},
	'w': {"🇼", "〰", "📈"},
	'x': {"🇽", "❎", "✖", "❌", "⚒"},
	'y': {"🇾", "✌", "💴"},
	'z': {"🇿", "2⃣"},
	'0': {"0⃣", "🅾", "⭕", "🔘", "⏺", "⚪", "⚫", "🔵", "🔴", "💫"},
	'1': {"1⃣", "🇮"},
	'2': {"2⃣", "🇿"},
	'3': {"3⃣"},
	'4': {"4⃣"},
	'5': {"5⃣", "🇸", "💲", "⚡"},
	'6': {"6⃣"},
	'7': {"7⃣"},
	'8': {"8⃣", "🎱"},
	'9': {"9⃣"},
	'!': {"❗", "❕", "⚠", "❣"},
	'?': {"❓", "❔"},
}

type combination struct {
	pair   string
	symbol string
}

// combinations are tried in order; each fires at most once per plan.
var combinations = []combination{
	{"ng", "🆖"},
	{"id", "🆔"},
	{"vs", "🆚"},
	{"wc", "🚾"},
	{"ab", "🆎"},
	{"cl", "🆑"},
	{"ok", "🆗"},
	{"up", "🆙"},
	{"10", "🔟"},
	{"ll", "⏸"},
	{"tm", "™"},
	{"on", "🔛"},
	{"oo", "🈁"},
	{"!?", "⁉"},
	{"!!", "‼"},
}

// regionals maps a-z to the regional indicator symbols.
var regionals = func() map[rune]string {
	m := make(map[rune]string, 26)
	for r := 'a'; r <= 'z'; r++ {
		m[r] = string(rune(0x1F1E6 + (r - 'a')))
	}
	return m
}()

// Candidates returns a copy of the candidate list for r, or nil.
func Candidates(r rune) []string {
	c, ok := candidates[r]
	if !ok {
		return nil
	}
	out := make([]string, len(c))
	copy(out, c)
	return out
}

// Default returns the default rendering of r.
func Default(r rune) (string, bool) {
	c, ok := candidates[r]
	if !ok {
		return "", false
	}
	return c[0], true
}

// Regional returns the regional indicator symbol for a lowercase letter.
func Regional(r rune) (string, bool) {
	s, ok := regionals[r]
	return s, ok
}
