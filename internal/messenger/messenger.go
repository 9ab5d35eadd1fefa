// Package messenger owns the outbound rendering contract: one tracked
// "current" message per user that screens are edited into, with a fresh send
// as the fallback path, and chunking of over-long texts.
package messenger

import (
	"log/slog"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/neuroteach/tutorbot/core/logger"
)

// API is the subset of the bot used for rendering. *tele.Bot satisfies it.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Messenger tracks the current menu message per user and renders views into
// it: edit first, send on failure, both-fail drops the event after logging.
type Messenger struct {
	mu      sync.Mutex
	current map[int64]tele.StoredMessage
}

// New creates an empty Messenger.
func New() *Messenger {
	return &Messenger{current: make(map[int64]tele.StoredMessage)}
}

// Render shows text with an inline keyboard in the user's current message.
// Over-long text is split; only the first chunk is edited and keyboarded,
// the rest go out as plain follow-up sends.
func (m *Messenger) Render(bot API, userID, chatID int64, text string, markup *tele.ReplyMarkup) {
	chunks := Split(text, MaxMessageLen)

	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	m.renderFirst(bot, userID, chatID, chunks[0], opts)

	to := tele.ChatID(chatID)
	for _, chunk := range chunks[1:] {
		if _, err := bot.Send(to, chunk, &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
			logger.Warn(logger.Background(), "tg", "render.chunk.drop",
				slog.Int64("user_id", userID),
				slog.Int("chunks", len(chunks)),
				slog.String("err", err.Error()),
			)
		}
	}
}

func (m *Messenger) renderFirst(bot API, userID, chatID int64, text string, opts *tele.SendOptions) {
	m.mu.Lock()
	stored, tracked := m.current[userID]
	m.mu.Unlock()

	if tracked {
		_, err := bot.Edit(stored, text, opts)
		if err == nil {
			return
		}
		logger.Debug(logger.Background(), "tg", "render.edit.miss",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	msg, err := bot.Send(tele.ChatID(chatID), text, opts)
	if err != nil {
		// Both paths failed: drop the event, the transport never sees it.
		logger.Warn(logger.Background(), "tg", "render.drop",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}

	m.mu.Lock()
	m.current[userID] = tele.StoredMessage{
		MessageID: strconv.Itoa(msg.ID),
		ChatID:    chatID,
	}
	m.mu.Unlock()
}

// Forget drops the tracked message for the user (used on progress reset).
func (m *Messenger) Forget(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.current, userID)
}

// Track remembers an existing message as the user's current one, so the next
// render edits it in place.
func (m *Messenger) Track(userID, chatID int64, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[userID] = tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}
