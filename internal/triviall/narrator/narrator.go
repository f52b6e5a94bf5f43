// Package narrator produces the announcer line shown after each answer.
package narrator

import (
	"strconv"
	"strings"

	"github.com/triviall-games/triviall/internal/strpool"
	"github.com/triviall-games/triviall/internal/triviall/resource"

	"github.com/valyala/fastrand"
)

// Style is the closed set of narrator voices.
type Style string

const (
	StyleGameShow    Style = "game_show"
	StyleSarcastic   Style = "sarcastic"
	StyleEncouraging Style = "encouraging"
)

const DefaultStyle = StyleGameShow

// comebackChance is the probability (out of 100) that a correct answer after
// a miss gets a comeback line instead of a plain correct one.
const comebackChance = 30

func ParseStyle(s string) Style {
	switch Style(s) {
	case StyleGameShow, StyleSarcastic, StyleEncouraging:
		return Style(s)
	default:
		return DefaultStyle
	}
}

func comments(style Style) resource.NarratorComments {
	switch style {
	case StyleSarcastic:
		return resource.SarcasticComments
	case StyleEncouraging:
		return resource.EncouragingComments
	default:
		return resource.GameShowComments
	}
}

// Comment picks an announcer line for one answer outcome. Streak lines kick
// in from a 2-streak; {name} and {streak} placeholders are filled in.
func Comment(style Style, correct bool, streak int, playerName string) string {
	c := comments(style)

	if correct && streak >= 2 && len(c.Streak) > 0 {
		return expand(pick(c.Streak), playerName, streak)
	}

	if correct && len(c.Comeback) > 0 && fastrand.Uint32n(100) < comebackChance {
		return expand(pick(c.Comeback), playerName, streak)
	}

	pool := c.Wrong
	if correct {
		pool = c.Correct
	}
	return expand(pick(pool), playerName, streak)
}

func pick(pool []string) string {
	return pool[fastrand.Uint32n(uint32(len(pool)))]
}

func expand(template, name string, streak int) string {
	if !strings.Contains(template, "{") {
		return template
	}

	buf := strpool.Get()
	defer strpool.Put(buf)

	rest := template
	for {
		i := strings.IndexByte(rest, '{')
		if i < 0 {
			buf.WriteString(rest)
			break
		}
		buf.WriteString(rest[:i])
		switch {
		case strings.HasPrefix(rest[i:], "{name}"):
			buf.WriteString(name)
			rest = rest[i+len("{name}"):]
		case strings.HasPrefix(rest[i:], "{streak}"):
			buf.WriteString(strconv.Itoa(streak))
			rest = rest[i+len("{streak}"):]
		default:
			buf.WriteByte('{')
			rest = rest[i+1:]
		}
	}

	return buf.String()
}
