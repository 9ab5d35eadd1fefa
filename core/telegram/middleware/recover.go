package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/neuroteach/tutorbot/core/logger"
	tghelpers "github.com/neuroteach/tutorbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware converts handler panics into an error log so one bad
// update cannot take the bot down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				ctx := tghelpers.BuildContext(c)
				logger.LogEvent(ctx, logger.Component("tg"), slog.LevelError, "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
