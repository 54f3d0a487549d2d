package cogs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewCounter(), NewPhun(), NewReactTermino(time.Second))

	h.run(ownerID, "!count cogs")
	assert.Equal(t, "I have `4` cogs loaded!", h.session.LastContent(), "Core is always loaded")

	// help + count + 7 phun + restart + shutdown
	h.run(ownerID, "!count commands")
	assert.Equal(t, "I have `11` commands loaded!", h.session.LastContent())

	h.run(ownerID, "!count commands phun")
	assert.Equal(t, "I have `7` commands loaded on that cog!", h.session.LastContent())

	h.run(ownerID, "!count commands counter")
	assert.Equal(t, "I have `3` commands loaded on that cog!", h.session.LastContent(), "subcommands are walked")

	h.run(ownerID, "!count commands nope")
	assert.Equal(t, "Please provide a valid cog name. (Example: `Core`)", h.session.LastContent())

	n := len(h.session.Sent)
	h.run(userID, "!count cogs")
	assert.Len(t, h.session.Sent, n)
}
