package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	tele "gopkg.in/telebot.v4"
)

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total Telegram updates received",
		},
		[]string{"kind"},
	)

	messagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_messages_sent_total",
			Help: "Total outbound messages (sends and edits)",
		},
	)
)

const (
	ctxKeyMessages = "messages"
	ctxKeyKeyboard = "kb"
)

// MessageMetricsMiddleware counts the update by kind and wraps the context
// so every outgoing message the handler produces is counted too.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		updatesTotal.WithLabelValues(updateKind(c.Update())).Inc()
		c.Set(ctxKeyMessages, 0)
		c.Set(ctxKeyKeyboard, false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads the per-update message count and keyboard flag.
func GetCounters(c tele.Context) (msgs int, kb bool) {
	if n, ok := c.Get(ctxKeyMessages).(int); ok {
		msgs = n
	}
	if b, ok := c.Get(ctxKeyKeyboard).(bool); ok {
		kb = b
	}
	return msgs, kb
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	default:
		return "other"
	}
}

// metricsContext intercepts the outbound send/edit family of methods.
// Edits count as responses alongside fresh sends.
type metricsContext struct{ tele.Context }

func (m metricsContext) recordSent(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	n, _ := m.Get(ctxKeyMessages).(int)
	m.Set(ctxKeyMessages, n+1)
	if carriesKeyboard(opts) {
		m.Set(ctxKeyKeyboard, true)
	}
	messagesSentTotal.Inc()
	return nil
}

func carriesKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.recordSent(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.recordSent(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.recordSent(m.Context.Edit(what, opts...), opts)
}

func (m metricsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.recordSent(m.Context.EditOrSend(what, opts...), opts)
}

func (m metricsContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return m.recordSent(m.Context.EditOrReply(what, opts...), opts)
}
