package router

import (
	"log/slog"
	"time"

	tg "github.com/neuroteach/tutorbot/core/telegram"
	"github.com/neuroteach/tutorbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the single OnCallback route. The callback key is
// resolved against the registry; unknown keys go to the registry's
// not-found handler or opts.NotFound.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()

		// Ack immediately so the client stops the spinner even if the
		// handler takes a while.
		_ = c.Respond()

		key, _ := parseCallback(cb)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		target, ok := reg.GetCallback(key)
		if !ok || target == nil {
			target = reg.CallbackNotFound()
			if target == nil {
				target = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}

		return handleWithSummary(c, name, start, "", "", func() error {
			if target == nil {
				return nil
			}
			return target(c)
		}, extras...)
	}

	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.LoggerMiddleware(middleware.RecoverMiddleware(handler)),
	}
}
