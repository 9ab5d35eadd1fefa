package messenger

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestSplitShortText(t *testing.T) {
	chunks := Split("hello", MaxMessageLen)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestSplitNoBreakCharacters(t *testing.T) {
	text := strings.Repeat("x", 9000)
	chunks := Split(text, MaxMessageLen)

	require.Len(t, chunks, 3)
	var total int
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), MaxMessageLen)
		total += len([]rune(c))
	}
	assert.Equal(t, 9000, total, "hard cuts lose nothing")
}

func TestSplitPrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 4000) + "\n" + strings.Repeat("b", 2000)
	chunks := Split(text, MaxMessageLen)

	require.Len(t, chunks, 2)
	assert.Equal(t, 4000, len([]rune(chunks[0])))
	assert.Equal(t, strings.Repeat("b", 2000), chunks[1])
}

func TestSplitFallsBackToSpace(t *testing.T) {
	text := strings.Repeat("a", 4090) + " " + strings.Repeat("b", 100)
	chunks := Split(text, MaxMessageLen)

	require.Len(t, chunks, 2)
	assert.Equal(t, 4090, len([]rune(chunks[0])))
	assert.Equal(t, strings.Repeat("b", 100), chunks[1])
}

// fakeBot records sends/edits and fails on demand.
type fakeBot struct {
	editErr error
	sendErr error

	edits  []string
	sends  []string
	nextID int
}

func (f *fakeBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sends = append(f.sends, what.(string))
	f.nextID++
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeBot) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edits = append(f.edits, what.(string))
	return &tele.Message{}, nil
}

func TestRenderSendsWhenUntracked(t *testing.T) {
	bot := &fakeBot{}
	m := New()

	m.Render(bot, 1, 1, "first screen", nil)

	assert.Empty(t, bot.edits)
	require.Len(t, bot.sends, 1)

	// The sent message becomes the current one: next render edits it.
	m.Render(bot, 1, 1, "second screen", nil)
	require.Len(t, bot.edits, 1)
	assert.Equal(t, "second screen", bot.edits[0])
	assert.Len(t, bot.sends, 1)
}

func TestRenderFallsBackToSend(t *testing.T) {
	bot := &fakeBot{}
	m := New()
	m.Track(1, 1, 99)

	bot.editErr = errors.New("message to edit not found")
	m.Render(bot, 1, 1, "screen", nil)

	require.Len(t, bot.sends, 1)

	// New message id replaces the stale one.
	bot.editErr = nil
	m.Render(bot, 1, 1, "next", nil)
	require.Len(t, bot.edits, 1)
}

func TestRenderDropsWhenBothPathsFail(t *testing.T) {
	bot := &fakeBot{editErr: errors.New("edit failed"), sendErr: errors.New("send failed")}
	m := New()
	m.Track(1, 1, 99)

	// Must not panic or error out.
	m.Render(bot, 1, 1, "screen", nil)
	assert.Empty(t, bot.sends)
	assert.Empty(t, bot.edits)
}

func TestRenderChunksOnlyFirstKeyboarded(t *testing.T) {
	bot := &fakeBot{}
	m := New()

	long := strings.Repeat("x", 9000)
	m.Render(bot, 1, 1, long, &tele.ReplyMarkup{})

	// First chunk sent (nothing tracked yet), two follow-up chunks.
	require.Len(t, bot.sends, 3)
	assert.LessOrEqual(t, len([]rune(bot.sends[0])), MaxMessageLen)

	// Next render edits the first chunk's message, not the follow-ups.
	m.Render(bot, 1, 1, "short", nil)
	require.Len(t, bot.edits, 1)
}

func TestForget(t *testing.T) {
	bot := &fakeBot{}
	m := New()
	m.Render(bot, 1, 1, "screen", nil)
	m.Forget(1)

	m.Render(bot, 1, 1, "again", nil)
	assert.Empty(t, bot.edits)
	assert.Len(t, bot.sends, 2)
}
