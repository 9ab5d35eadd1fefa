package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOverwrites(t *testing.T) {
	m := NewManager()
	m.Start(1, "lesson-a")
	m.AppendTeacherTurn(1, "hello")
	m.AdvanceStep(1, 2)

	m.Start(1, "lesson-b")

	cur, ok := m.Current(1)
	require.True(t, ok)
	assert.Equal(t, "lesson-b", cur.Lesson)
	assert.Equal(t, 0, cur.Step)
	assert.Empty(t, cur.Conversation)
}

func TestResumeIfMatching(t *testing.T) {
	m := NewManager()
	m.Start(1, "lesson-a")
	m.AppendTeacherTurn(1, "first concept")
	m.AdvanceStep(1, 1)
	m.Suspend(1)

	assert.False(t, m.Active(1))

	// Different lesson: no resume, stores untouched.
	assert.False(t, m.ResumeIfMatching(1, "lesson-b"))
	assert.False(t, m.Active(1))
	_, suspended := m.Counts()
	assert.Equal(t, 1, suspended)

	// Exact match: resumed with state intact.
	require.True(t, m.ResumeIfMatching(1, "lesson-a"))
	cur, ok := m.Current(1)
	require.True(t, ok)
	assert.Equal(t, 1, cur.Step)
	require.Len(t, cur.Conversation, 1)
	assert.Equal(t, RoleTeacher, cur.Conversation[0].Role)

	// Suspension is consumed by copy, not deleted.
	_, suspended = m.Counts()
	assert.Equal(t, 1, suspended)
}

func TestResumeWithoutSuspension(t *testing.T) {
	m := NewManager()
	assert.False(t, m.ResumeIfMatching(9, "lesson-a"))
}

func TestMutatorsWithoutSession(t *testing.T) {
	m := NewManager()

	m.AppendStudentTurn(5, "hi")
	m.AppendTeacherTurn(5, "hello")
	m.AdvanceStep(5, 3)
	m.Suspend(5)

	assert.False(t, m.Active(5))
	live, suspended := m.Counts()
	assert.Equal(t, 0, live)
	assert.Equal(t, 0, suspended)
}

func TestStepOnlyIncreases(t *testing.T) {
	m := NewManager()
	m.Start(1, "lesson-a")
	m.AdvanceStep(1, 2)
	m.AdvanceStep(1, 1)

	cur, _ := m.Current(1)
	assert.Equal(t, 2, cur.Step)
}

func TestRecentTurnsWindow(t *testing.T) {
	m := NewManager()
	m.Start(1, "lesson-a")
	for i := 0; i < 10; i++ {
		m.AppendStudentTurn(1, "question")
		m.AppendTeacherTurn(1, "answer")
	}

	turns := m.RecentTurns(1, 6)
	require.Len(t, turns, 6)
	// The window ends with the most recent turn.
	assert.Equal(t, RoleTeacher, turns[5].Role)

	assert.Nil(t, m.RecentTurns(2, 6))
}

func TestLastTeacherSummary(t *testing.T) {
	m := NewManager()
	m.Start(1, "lesson-a")

	assert.Equal(t, NoSummaryPlaceholder, m.LastTeacherSummary(1, SummaryMaxChars))

	m.AppendTeacherTurn(1, "short reply")
	m.AppendStudentTurn(1, "ok")
	assert.Equal(t, "short reply", m.LastTeacherSummary(1, SummaryMaxChars))

	long := strings.Repeat("х", 80)
	m.AppendTeacherTurn(1, long)
	summary := m.LastTeacherSummary(1, SummaryMaxChars)
	assert.Equal(t, strings.Repeat("х", 50)+"...", summary)
	assert.Equal(t, 53, len([]rune(summary)))
}

func TestReset(t *testing.T) {
	m := NewManager()
	m.Start(1, "lesson-a")
	m.Suspend(1)
	m.Start(1, "lesson-b")

	m.Reset(1)

	live, suspended := m.Counts()
	assert.Equal(t, 0, live)
	assert.Equal(t, 0, suspended)
}
