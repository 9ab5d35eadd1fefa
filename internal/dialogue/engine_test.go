package dialogue

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroteach/tutorbot/internal/llm"
	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
)

const testLesson = "🌌 Первый контакт: основы взаимодействия с AI"

func newTestEngine(mock *llm.MockProvider) (*Engine, *session.Manager, *progress.Tracker) {
	sessions := session.NewManager()
	tracker := progress.NewTracker()
	eng := NewEngine(mock, sessions, tracker, Options{MaxTokens: 300, Temperature: 0.8})
	return eng, sessions, tracker
}

func TestStartFreshGreeting(t *testing.T) {
	eng, sessions, _ := newTestEngine(llm.NewMockProvider())

	view := eng.StartOrResume(context.Background(), 1, testLesson)

	cur, ok := sessions.Current(1)
	require.True(t, ok)
	assert.Equal(t, 0, cur.Step)
	assert.Empty(t, cur.Conversation)

	found := false
	for _, g := range OpeningGreetings(testLesson) {
		if containsLine(view.Text, g) {
			found = true
		}
	}
	assert.True(t, found, "greeting must come from the fixed set: %q", view.Text)
	require.NotNil(t, view.Keyboard)
}

func TestResumeGreetingUsesSummary(t *testing.T) {
	eng, sessions, _ := newTestEngine(llm.NewMockProvider(llm.MockResponse{Text: "основы промптинга"}))

	eng.StartOrResume(context.Background(), 1, testLesson)
	eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	sessions.Suspend(1)

	view := eng.StartOrResume(context.Background(), 1, testLesson)

	cur, ok := sessions.Current(1)
	require.True(t, ok)
	assert.Equal(t, 1, cur.Step, "resume keeps the step")

	found := false
	for _, r := range ResumeReactions("основы промптинга") {
		if containsLine(view.Text, r) {
			found = true
		}
	}
	assert.True(t, found, "resume reaction must reference the summary: %q", view.Text)
}

func TestResumeRejectedForDifferentLesson(t *testing.T) {
	eng, sessions, _ := newTestEngine(llm.NewMockProvider())

	eng.StartOrResume(context.Background(), 1, testLesson)
	sessions.Suspend(1)

	eng.StartOrResume(context.Background(), 1, "другой урок")

	cur, ok := sessions.Current(1)
	require.True(t, ok)
	assert.Equal(t, "другой урок", cur.Lesson)
	assert.Equal(t, 0, cur.Step)
}

func TestAdvanceTurnStepSequence(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "шаг один"},
		llm.MockResponse{Text: "шаг два"},
	)
	eng, sessions, _ := newTestEngine(mock)

	eng.StartOrResume(context.Background(), 1, testLesson)

	view := eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	assert.Contains(t, view.Text, "шаг один")

	cur, _ := sessions.Current(1)
	assert.Equal(t, 1, cur.Step)
	require.Len(t, cur.Conversation, 1)
	assert.Equal(t, session.RoleTeacher, cur.Conversation[0].Role)

	eng.AdvanceTurn(context.Background(), 1, testLesson, "а что дальше?")
	cur, _ = sessions.Current(1)
	assert.Equal(t, 2, cur.Step)
	require.Len(t, cur.Conversation, 3)
	assert.Equal(t, session.RoleStudent, cur.Conversation[1].Role)
}

func TestCompletionAtThirdTurnOnce(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := 0; i < 5; i++ {
		mock.AddResponse(llm.MockResponse{Text: fmt.Sprintf("ответ %d", i)})
	}
	eng, _, tracker := newTestEngine(mock)

	eng.StartOrResume(context.Background(), 1, testLesson)

	eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	assert.Equal(t, 0, tracker.Snapshot(1).Score, "no completion before the threshold")

	eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	snap := tracker.Snapshot(1)
	assert.True(t, snap.IsCompleted(testLesson))
	assert.Equal(t, 10, snap.Score)

	// Further turns after completion stay available and credit nothing new.
	eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	eng.AdvanceTurn(context.Background(), 1, testLesson, "")
	assert.Equal(t, 10, tracker.Snapshot(1).Score)
}

func TestContextWindowCapped(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := 0; i < 12; i++ {
		mock.AddResponse(llm.MockResponse{Text: fmt.Sprintf("ответ %d", i)})
	}
	eng, _, _ := newTestEngine(mock)

	eng.StartOrResume(context.Background(), 1, testLesson)
	for i := 0; i < 10; i++ {
		eng.AdvanceTurn(context.Background(), 1, testLesson, fmt.Sprintf("вопрос %d", i))
	}

	for _, call := range mock.Calls {
		assert.LessOrEqual(t, len(call.Messages), ContextTurns)
	}
	last := mock.Calls[len(mock.Calls)-1]
	assert.Len(t, last.Messages, ContextTurns)
	// The window ends with the student's latest input.
	assert.Equal(t, llm.RoleUser, last.Messages[ContextTurns-1].Role)
	assert.Equal(t, "вопрос 9", last.Messages[ContextTurns-1].Content)
}

func TestGenerationFailureFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	eng, sessions, _ := newTestEngine(mock)

	eng.StartOrResume(context.Background(), 1, testLesson)
	view := eng.AdvanceTurn(context.Background(), 1, testLesson, "")

	found := false
	for _, f := range FallbackReplies() {
		if containsLine(view.Text, f) {
			found = true
		}
	}
	assert.True(t, found, "fallback must come from the fixed set: %q", view.Text)

	// The fallback still counts as a teacher turn and advances the step.
	cur, _ := sessions.Current(1)
	assert.Equal(t, 1, cur.Step)
	require.Len(t, cur.Conversation, 1)
}

func TestImplicitSessionOnAdvance(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ответ"})
	eng, sessions, _ := newTestEngine(mock)

	eng.AdvanceTurn(context.Background(), 1, testLesson, "вопрос без старта")

	cur, ok := sessions.Current(1)
	require.True(t, ok)
	assert.Equal(t, testLesson, cur.Lesson)
	assert.Equal(t, 1, cur.Step)
}

func TestSystemPromptCarriesTopicLevelStep(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ответ"})
	eng, _, _ := newTestEngine(mock)

	eng.StartOrResume(context.Background(), 1, testLesson)
	eng.AdvanceTurn(context.Background(), 1, testLesson, "")

	require.Len(t, mock.Calls, 1)
	sys := mock.Calls[0].System
	assert.Contains(t, sys, testLesson)
	assert.Contains(t, sys, "Уровень ученика: 1/5")
	assert.Contains(t, sys, "Текущий шаг: 0")
}

func containsLine(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
