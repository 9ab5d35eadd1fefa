package nav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroteach/tutorbot/internal/catalog"
	"github.com/neuroteach/tutorbot/internal/dialogue"
	"github.com/neuroteach/tutorbot/internal/llm"
	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
)

type fixture struct {
	ctrl     *Controller
	sessions *session.Manager
	tracker  *progress.Tracker
	mock     *llm.MockProvider
	cat      *catalog.Catalog
}

func newFixture(t *testing.T, responses ...llm.MockResponse) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	mock := llm.NewMockProvider(responses...)
	sessions := session.NewManager()
	tracker := progress.NewTracker()
	engine := dialogue.NewEngine(mock, sessions, tracker, dialogue.Options{})

	return &fixture{
		ctrl:     NewController(cat, tracker, sessions, engine, ""),
		sessions: sessions,
		tracker:  tracker,
		mock:     mock,
		cat:      cat,
	}
}

func TestOpenMainSuspendsLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	require.True(t, f.sessions.Active(1))

	view := f.ctrl.OpenMain(ctx, 1)
	assert.False(t, f.sessions.Active(1))
	_, suspended := f.sessions.Counts()
	assert.Equal(t, 1, suspended)
	assert.Contains(t, view.Text, "NeuroTeacher")
}

func TestOpenCourseUnknownDegradesToMain(t *testing.T) {
	f := newFixture(t)

	view := f.ctrl.OpenCourse(context.Background(), 1, "missing-course")
	assert.Contains(t, view.Text, "Выбери направление")
}

func TestStartLessonOutOfRangeDegradesToMain(t *testing.T) {
	f := newFixture(t)

	view := f.ctrl.StartLesson(context.Background(), 1, "ai-system", 99)
	assert.Contains(t, view.Text, "Выбери направление")
	assert.False(t, f.sessions.Active(1))
}

func TestBackThenRestartResumes(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "первый шаг"})
	ctx := context.Background()

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	f.ctrl.NextSection(ctx, 1)

	cur, _ := f.sessions.Current(1)
	require.Equal(t, 1, cur.Step)

	view := f.ctrl.BackToCourse(ctx, 1)
	assert.False(t, f.sessions.Active(1))
	assert.Contains(t, view.Text, "Войти в систему AI")

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	cur, ok := f.sessions.Current(1)
	require.True(t, ok)
	assert.Equal(t, 1, cur.Step, "restart after back resumes, not resets")
}

func TestBackToCourseWithoutSessionDegradesToMain(t *testing.T) {
	f := newFixture(t)

	view := f.ctrl.BackToCourse(context.Background(), 42)
	assert.Contains(t, view.Text, "Выбери направление")
}

func TestLessonInputOnlyWithLiveSession(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "ответ учителя"})
	ctx := context.Background()

	_, handled := f.ctrl.LessonInput(ctx, 1, "привет")
	assert.False(t, handled)

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	view, handled := f.ctrl.LessonInput(ctx, 1, "расскажи подробнее")
	require.True(t, handled)
	assert.Contains(t, view.Text, "ответ учителя")

	cur, _ := f.sessions.Current(1)
	require.Len(t, cur.Conversation, 2)
	assert.Equal(t, session.RoleStudent, cur.Conversation[0].Role)
}

func TestAskQuestionRendersPromptWithoutGeneration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	view := f.ctrl.AskQuestion(ctx, 1)

	assert.Contains(t, view.Text, "Напишите свой вопрос")
	assert.Zero(t, f.mock.CallCount())
}

func TestResetProgressClearsEverything(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "a"}, llm.MockResponse{Text: "b"}, llm.MockResponse{Text: "c"})
	ctx := context.Background()

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	f.ctrl.NextSection(ctx, 1)
	f.ctrl.NextSection(ctx, 1)
	f.ctrl.NextSection(ctx, 1)
	require.Equal(t, 10, f.tracker.Snapshot(1).Score)

	f.ctrl.BackToCourse(ctx, 1)
	_, suspended := f.sessions.Counts()
	require.Equal(t, 1, suspended)

	f.ctrl.ResetProgress(ctx, 1)

	live, suspended := f.sessions.Counts()
	assert.Equal(t, 0, live)
	assert.Equal(t, 0, suspended)
	assert.Equal(t, 0, f.tracker.Users())

	profile := f.ctrl.Profile(1)
	assert.Contains(t, profile.Text, "Уровень: 1")
	assert.Contains(t, profile.Text, "Баллы: 0")
}

func TestDispatchUnrecognizedRendersMain(t *testing.T) {
	f := newFixture(t)

	view := f.ctrl.Dispatch(context.Background(), 1, Event{Kind: Unrecognized})
	assert.Contains(t, view.Text, "Выбери направление")
}

func TestCourseScreenShowsProgress(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: "a"}, llm.MockResponse{Text: "b"}, llm.MockResponse{Text: "c"})
	ctx := context.Background()

	f.ctrl.StartLesson(ctx, 1, "ai-system", 0)
	f.ctrl.NextSection(ctx, 1)
	f.ctrl.NextSection(ctx, 1)
	f.ctrl.NextSection(ctx, 1)

	view := f.ctrl.OpenCourse(ctx, 1, "ai-system")
	assert.Contains(t, view.Text, "1/4 уроков")
	assert.Contains(t, view.Text, "🟩⬜⬜⬜ 25.0%")
	require.NotNil(t, view.Keyboard)
}
