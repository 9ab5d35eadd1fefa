package format

import "strings"

var mdV1Escaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"`", "\\`",
)

// EscapeMarkdown escapes Telegram Markdown (v1) control characters in dynamic
// text such as lesson titles before interpolation into formatted messages.
func EscapeMarkdown(text string) string {
	return mdV1Escaper.Replace(text)
}
