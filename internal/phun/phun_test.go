package phun

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlipText(t *testing.T) {
	assert.Equal(t, "ollǝɥ", FlipText("hello"))
	assert.Equal(t, "¡ᴉH", FlipText("Hi!"))
	assert.Equal(t, "hello", FlipText(FlipText("hello")), "flipping twice restores lower case text")
	assert.Equal(t, "日本", FlipText("本日"), "unknown runes are only reversed")
	assert.Equal(t, "", FlipText(""))
}

func TestVowelReplace(t *testing.T) {
	assert.Equal(t, "bbnbnb", VowelReplace("b", "banana"))
	assert.Equal(t, "H*ll* W*rld", VowelReplace("*", "Hello World"))
	assert.Equal(t, "xyz", VowelReplace("!", "xyz"))
}

func TestRegional(t *testing.T) {
	assert.Equal(t, "🇭\u200b🇮\u200b!", Regional("Hi!"))
	assert.Equal(t, "1", Regional("1"))
}

func TestSpace(t *testing.T) {
	assert.Equal(t, "t h i c c", Space(1, "thicc"))
	assert.Equal(t, "a  b", Space(2, "ab"))
	assert.Equal(t, "a b", Space(0, "ab"))

	n, text := ParseSpace("3 thicc boi")
	assert.Equal(t, 3, n)
	assert.Equal(t, "thicc boi", text)

	n, text = ParseSpace("thicc boi")
	assert.Equal(t, 1, n)
	assert.Equal(t, "thicc boi", text)

	n, text = ParseSpace("42")
	assert.Equal(t, 1, n, "a lone number is the text")
	assert.Equal(t, "42", text)

	n, _ = ParseSpace("99999999999999999999 x")
	assert.Equal(t, 100, n, "capped")
}

func TestPP(t *testing.T) {
	for _, id := range []string{"1", "123456789012345678", "abc"} {
		l := PPLength(id)
		assert.GreaterOrEqual(t, l, 0)
		assert.LessOrEqual(t, l, MaxPP)
		assert.Equal(t, l, PPLength(id), "stable per user")
	}

	out := FormatPP([]PP{{Name: "short", Length: 1}, {Name: "long", Length: 10}})
	assert.True(t, strings.HasPrefix(out, "**long's size:**\n8==========D\n"))
	assert.True(t, strings.HasSuffix(out, "**short's size:**\n8=D\n"))
	assert.Equal(t, "8D", PP{Length: 0}.String())
}
