
package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWindow_LongText(t *testing.T) {
	// 12000 runes: the window starts a quarter in and is exactly the limit.
	text := strings.Repeat("ک", 12000)
	win := ContextWindow(text)
	assert.Equal(t, 3000, len([]rune(win)))

	// Verify the start offset with a marker rune.
	r := []rune(text)
	r[3000] = 'X'
	win = ContextWindow(string(r))
	assert.Equal(t, 'X', []rune(win)[0])
}

func TestContextWindow_ShortText(t *testing.T) {
	text := strings.Repeat("ب", 500)
	assert.Equal(t, text, ContextWindow(text))
}

func TestContextWindow_TrivialText(t *testing.T) {
	assert.Empty(t, ContextWindow("خیلی کوتاه"))
	assert.Empty(t, ContextWindow(""))
}

func TestDigestHistory_FiltersShortEntries(t *testing.T) {
	history := []HistoryItem{
		{Text: "کوتاه"}, // under the threshold, dropped
		{Text: strings.Repeat("الف ", 100)},
		{Caption: strings.Repeat("ب", 30)}, // caption counts when text is empty
	}
	examples, avoid := digestHistory(history)
	require.Len(t, examples, 2)
	require.Len(t, avoid, 2)
	assert.LessOrEqual(t, len([]rune(examples[0])), 200)
	assert.LessOrEqual(t, len([]rune(avoid[0])), 80)
}

func TestDigestHistory_CapsDepthAndExamples(t *testing.T) {
	var history []HistoryItem
	for i := 0; i < 30; i++ {
		history = append(history, HistoryItem{Text: strings.Repeat("متن ", 20)})
	}
	examples, avoid := digestHistory(history)
	assert.Len(t, examples, 5)
	assert.Len(t, avoid, 5)
}

func TestGenerateFromHistory_PlaceholderWithoutHistory(t *testing.T) {
	// No usable history must not touch the network at all.
	c := New("", "test-model")
	c.http = nil // any request would panic

	g, err := c.GenerateFromHistory(context.Background(), nil, "quote", "کویر", "شریعتی", "")
	require.NoError(t, err)
	assert.Contains(t, g.Quote, "کویر")
	assert.Contains(t, g.Quote, "شریعتی")

	// All-too-short history counts as no history.
	short := []HistoryItem{{Text: "کم"}, {Text: "هیچ"}}
	g, err = c.GenerateFromHistory(context.Background(), short, "description", "کویر", "", "")
	require.NoError(t, err)
	assert.Contains(t, g.Description, "کویر")
}

func TestGeneratedTextFor(t *testing.T) {
	g := Generated{Quote: "نقل", Context: "زمینه"}
	assert.Equal(t, "نقل\n\nزمینه", g.TextFor("quote"))

	g = Generated{Summary: "خلاصه", KeyPoints: []string{"یک", "دو"}}
	out := g.TextFor("summary")
	assert.Contains(t, out, "خلاصه")
	assert.Contains(t, out, "• یک")
	assert.Contains(t, out, "• دو")

	assert.Empty(t, Generated{}.TextFor("description"))
}
