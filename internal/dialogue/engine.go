// Package dialogue orchestrates one lesson turn: it reads the live session,
// calls the generation provider with a bounded conversation window, appends
// the reply, advances the step counter and credits lesson completion once the
// step threshold is reached.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	tele "gopkg.in/telebot.v4"

	"github.com/neuroteach/tutorbot/core/logger"
	"github.com/neuroteach/tutorbot/core/telegram/format"
	"github.com/neuroteach/tutorbot/core/telegram/keyboard"
	"github.com/neuroteach/tutorbot/internal/llm"
	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
)

var generationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bot_generation_total",
	Help: "Lesson generation calls by outcome.",
}, []string{"status"})

const (
	// ContextTurns bounds how much history is sent to the provider.
	ContextTurns = 6

	// CompletionStep is the turn count at which a lesson is credited.
	CompletionStep = 3
)

// View is what a dialogue turn renders: message text plus an inline keyboard.
type View struct {
	Text     string
	Keyboard *tele.ReplyMarkup
}

// Options tune generation; zero values fall back to provider defaults.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Engine drives the lesson state machine over the session and progress stores.
type Engine struct {
	provider llm.Provider
	sessions *session.Manager
	progress progress.Backend
	opts     Options
}

// NewEngine wires the dialogue engine.
func NewEngine(provider llm.Provider, sessions *session.Manager, tracker progress.Backend, opts Options) *Engine {
	return &Engine{
		provider: provider,
		sessions: sessions,
		progress: tracker,
		opts:     opts,
	}
}

// StartOrResume opens the lesson for the user: resumes the suspended session
// when it matches exactly, otherwise starts fresh with an opening greeting.
func (e *Engine) StartOrResume(ctx context.Context, userID int64, lesson string) View {
	var body string
	if e.sessions.ResumeIfMatching(userID, lesson) {
		summary := e.sessions.LastTeacherSummary(userID, session.SummaryMaxChars)
		body = pickResumeReaction(summary)
	} else {
		e.sessions.Start(userID, lesson)
		body = pickGreeting(lesson)
	}

	text := fmt.Sprintf("🧠 *Учитель NeuroTeacher*\n\n📚 Тема: %s\n\n%s",
		format.EscapeMarkdown(lesson), body)
	return View{Text: text, Keyboard: LessonKeyboard()}
}

// AdvanceTurn runs one generation turn. userInput may be empty (the "next
// section" affordance); when present it is recorded as a student turn first.
// Generation failure degrades to a fallback reply, never to an error.
func (e *Engine) AdvanceTurn(ctx context.Context, userID int64, lesson string, userInput string) View {
	if !e.sessions.Active(userID) {
		// Defensive: a turn event without a live session starts one.
		e.sessions.Start(userID, lesson)
	}
	if userInput != "" {
		e.sessions.AppendStudentTurn(userID, userInput)
	}

	cur, _ := e.sessions.Current(userID)
	level := e.progress.Snapshot(userID).Level
	window := e.sessions.RecentTurns(userID, ContextTurns)

	reply := e.generate(ctx, userID, lesson, level, cur.Step, window)

	e.sessions.AppendTeacherTurn(userID, reply)
	newStep := cur.Step + 1
	e.sessions.AdvanceStep(userID, newStep)

	if newStep >= CompletionStep {
		e.progress.RecordCompletion(userID, lesson)
	}

	text := fmt.Sprintf("📚 *%s*\n\n%s", format.EscapeMarkdown(lesson), reply)
	return View{Text: text, Keyboard: LessonKeyboard()}
}

func (e *Engine) generate(ctx context.Context, userID int64, lesson string, level, step int, window []session.Turn) string {
	req := llm.Request{
		System:      buildSystemPrompt(lesson, level, step),
		Messages:    buildMessages(window),
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
	}

	start := time.Now()
	resp, err := e.provider.Generate(ctx, req)
	took := logger.Took(start)

	if err != nil {
		generationTotal.WithLabelValues("fallback").Inc()
		logger.Warn(ctx, "gen", "generate.fallback",
			slog.Int64("user_id", userID),
			slog.String("lesson", logger.SanitizeLimit(lesson, 64)),
			slog.Int("step", step),
			slog.Int("turns", len(window)),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return pickFallback()
	}

	generationTotal.WithLabelValues("ok").Inc()
	logger.Debug(ctx, "gen", "generate.ok",
		slog.Int64("user_id", userID),
		slog.String("model", resp.Model),
		slog.Int("step", step),
		slog.Int("turns", len(window)),
		slog.Int("tokens_out", resp.Usage.OutputTokens),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return resp.Text
}

func buildMessages(window []session.Turn) []llm.Message {
	if len(window) == 0 {
		return []llm.Message{{Role: llm.RoleUser, Content: "Диалог начинается. Начни урок."}}
	}
	out := make([]llm.Message, len(window))
	for i, t := range window {
		role := llm.RoleUser
		if t.Role == session.RoleTeacher {
			role = llm.RoleAssistant
		}
		out[i] = llm.Message{Role: role, Content: t.Content}
	}
	return out
}

func buildSystemPrompt(lesson string, level, step int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ты — NeuroTeacher, эксперт, который развивает тему урока структурировано и последовательно.\n\n")
	fmt.Fprintf(&b, "Тема урока: %s\n", lesson)
	fmt.Fprintf(&b, "Уровень ученика: %d/5\n", level)
	fmt.Fprintf(&b, "Текущий шаг: %d\n\n", step)
	b.WriteString(`Критически важные правила:
1. Развивай тему вперед: каждый ответ добавляет новую информацию.
2. Конкретные знания: факты, техники, методики, примеры.
3. Структурированный подход: объясни новый концепт, приведи практический пример, покажи как это применить.
4. Избегай повторений: не говори "давайте продолжим", "перейдем дальше".
5. Естественное развитие: плавно переходи от одного аспекта к другому.
6. Практическая ценность: фокус на том, что можно использовать.
7. Краткость: 2-3 предложения содержательной информации.

Стиль общения: эксперт, делящийся знаниями; практик, показывающий применение; наставник, вдохновляющий на изучение.

`)
	fmt.Fprintf(&b, "Сейчас: развивай тему \"%s\" дальше. Добавь новый аспект, технику или пример.", lesson)
	return b.String()
}

// LessonKeyboard returns the fixed in-lesson affordances.
func LessonKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "❓ Задать вопрос", Unique: "ask_question"},
			{Text: "➡️ Дальше", Unique: "next_section"},
		},
		[]keyboard.InlineBtn{
			{Text: "🔙 Назад к курсу", Unique: "menu_course_back"},
		},
	)
}
