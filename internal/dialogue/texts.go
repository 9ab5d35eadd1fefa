package dialogue

import (
	"fmt"
	"math/rand/v2"
)

// Fallback replies used when generation fails or comes back empty. A lesson
// turn never surfaces a raw error to the user.
var fallbackReplies = []string{
	"Расскажу вам о следующем важном аспекте этой темы...",
	"Давайте рассмотрим эту тему с практической стороны...",
	"Вот ещё один приём, который стоит взять на вооружение...",
}

var openingGreetings = []string{
	"Привет! Начнем изучать %s",
	"Добро пожаловать на урок: %s",
	"Начнем наше погружение в %s",
}

var resumeReactions = []string{
	"Отлично, что вернулись! 😊 Продолжим с: *%s*",
	"С возвращением! Мы остановились на: *%s*",
	"Рад вас снова видеть! Продолжаем: *%s*",
}

// FallbackReplies returns the fixed fallback set.
func FallbackReplies() []string {
	out := make([]string, len(fallbackReplies))
	copy(out, fallbackReplies)
	return out
}

// OpeningGreetings returns the opening greeting set rendered for a lesson.
func OpeningGreetings(lesson string) []string {
	out := make([]string, len(openingGreetings))
	for i, g := range openingGreetings {
		out[i] = fmt.Sprintf(g, lesson)
	}
	return out
}

// ResumeReactions returns the resumption greeting set rendered for a summary.
func ResumeReactions(summary string) []string {
	out := make([]string, len(resumeReactions))
	for i, r := range resumeReactions {
		out[i] = fmt.Sprintf(r, summary)
	}
	return out
}

func pickFallback() string {
	return fallbackReplies[rand.IntN(len(fallbackReplies))]
}

func pickGreeting(lesson string) string {
	return fmt.Sprintf(openingGreetings[rand.IntN(len(openingGreetings))], lesson)
}

func pickResumeReaction(summary string) string {
	return fmt.Sprintf(resumeReactions[rand.IntN(len(resumeReactions))], summary)
}
