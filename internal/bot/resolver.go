package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/reaction"
)

// StateEmojiResolver resolves custom emoji IDs against the guilds cached in
// the session state, so only emoji the bot can use are returned.
type StateEmojiResolver struct {
	state *discordgo.State
}

// NewStateEmojiResolver creates a resolver over state.
func NewStateEmojiResolver(state *discordgo.State) *StateEmojiResolver {
	return &StateEmojiResolver{state: state}
}

// ResolveEmoji implements reaction.EmojiResolver.
func (r *StateEmojiResolver) ResolveEmoji(id string) (reaction.Token, bool) {
	if r.state == nil {
		return reaction.Token{}, false
	}
	r.state.RLock()
	defer r.state.RUnlock()
	for _, g := range r.state.Guilds {
		for _, e := range g.Emojis {
			if e.ID == id {
				return reaction.Token{Custom: true, ID: e.ID, Name: e.Name, Animated: e.Animated}, true
			}
		}
	}
	return reaction.Token{}, false
}

var _ reaction.EmojiResolver = (*StateEmojiResolver)(nil)
