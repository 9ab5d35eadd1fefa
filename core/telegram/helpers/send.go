package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/neuroteach/tutorbot/core/logger"
	"github.com/neuroteach/tutorbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// DeleteInbound removes the incoming message of the current update.
// Deletion runs through the async dispatcher; failures are logged there.
func DeleteInbound(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	bot := c.Bot()
	return sendAsync(c, "delete.inbound", "deleteMessage", func() error {
		return bot.Delete(msg)
	})
}
