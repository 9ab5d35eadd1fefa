package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command bundles a slash-command handler with its menu metadata.
// Hidden commands stay callable but are left out of the Telegram menu;
// Aliases resolve to the same handler without appearing anywhere.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
	Aliases     []string
}
