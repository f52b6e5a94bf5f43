package narrator

import (
	"strings"
	"testing"

	"github.com/triviall-games/triviall/internal/triviall/resource"

	"github.com/stretchr/testify/assert"
)

func TestParseStyle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StyleSarcastic, ParseStyle("sarcastic"))
	assert.Equal(t, StyleEncouraging, ParseStyle("encouraging"))
	assert.Equal(t, DefaultStyle, ParseStyle("game_show"))
	assert.Equal(t, DefaultStyle, ParseStyle(""))
	assert.Equal(t, DefaultStyle, ParseStyle("shakespearean"))
}

func TestCommentStreak(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		got := Comment(StyleGameShow, true, 3, "Alex")
		assert.Contains(t, resourcePoolExpanded(resource.GameShowComments.Streak, "Alex", "3"), got)
	}
}

func TestCommentWrong(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		got := Comment(StyleSarcastic, false, 0, "Alex")
		assert.Contains(t, resource.SarcasticComments.Wrong, got)
	}
}

func TestCommentCorrectNoStreak(t *testing.T) {
	t.Parallel()

	pools := resourcePoolExpanded(resource.EncouragingComments.Correct, "Alex", "1")
	pools = append(pools, resourcePoolExpanded(resource.EncouragingComments.Comeback, "Alex", "1")...)

	for i := 0; i < 50; i++ {
		got := Comment(StyleEncouraging, true, 1, "Alex")
		assert.Contains(t, pools, got)
	}
}

func TestCommentPlaceholdersFilled(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		got := Comment(StyleGameShow, true, 5, "Alex")
		assert.NotContains(t, got, "{name}")
		assert.NotContains(t, got, "{streak}")
	}
}

func resourcePoolExpanded(pool []string, name, streak string) []string {
	out := make([]string, 0, len(pool))
	for _, tmpl := range pool {
		s := strings.ReplaceAll(tmpl, "{name}", name)
		s = strings.ReplaceAll(s, "{streak}", streak)
		out = append(out, s)
	}
	return out
}
