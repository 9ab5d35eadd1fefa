// Package session owns per-user lesson dialogue state: one live session per
// user plus at most one suspended snapshot used for resumption after the user
// navigates away from a lesson.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/neuroteach/tutorbot/core/logger"
)

// Role attributes a conversation turn to one of the two dialogue parties.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// NoSummaryPlaceholder is rendered when a resumed session has no teacher turn
// to summarize yet.
const NoSummaryPlaceholder = "начале урока"

// SummaryMaxChars bounds the "welcome back" summary of the last teacher turn.
const SummaryMaxChars = 50

// Turn is a single message within a lesson conversation.
type Turn struct {
	Role    Role
	Content string
	At      time.Time
}

// Session is the live state of a user's current lesson. Conversation is
// append-only; Step only increases.
type Session struct {
	Lesson       string
	Step         int
	Conversation []Turn
	StartedAt    time.Time
	LastUpdated  time.Time
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Conversation = make([]Turn, len(s.Conversation))
	copy(cp.Conversation, s.Conversation)
	return &cp
}

// Manager keeps the live and suspended stores. All methods are safe for
// concurrent use; per-user event ordering is the transport's concern.
type Manager struct {
	mu        sync.RWMutex
	live      map[int64]*Session
	suspended map[int64]*Session
	now       func() time.Time
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		live:      make(map[int64]*Session),
		suspended: make(map[int64]*Session),
		now:       time.Now,
	}
}

// Start unconditionally replaces any live session with a fresh one for the
// given lesson. The suspended store is not consulted; a stale suspension is
// simply left behind to be overwritten by the next Suspend.
func (m *Manager) Start(userID int64, lesson string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.live[userID] = &Session{
		Lesson:      lesson,
		StartedAt:   now,
		LastUpdated: now,
	}
	logger.Info(logger.Background(), "service.sessions", "session.start",
		slog.Int64("user_id", userID),
		slog.String("lesson", logger.SanitizeLimit(lesson, 64)),
	)
}

// ResumeIfMatching copies the suspended session into the live store when one
// exists for exactly the requested lesson. A suspension for a different
// lesson leaves both stores untouched. The suspension is consumed by copy,
// not deleted.
func (m *Manager) ResumeIfMatching(userID int64, lesson string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved, ok := m.suspended[userID]
	if !ok || saved.Lesson != lesson {
		return false
	}
	m.live[userID] = saved.clone()
	logger.Info(logger.Background(), "service.sessions", "session.resume",
		slog.Int64("user_id", userID),
		slog.String("lesson", logger.SanitizeLimit(lesson, 64)),
		slog.Int("step", saved.Step),
		slog.Int("turns", len(saved.Conversation)),
	)
	return true
}

// Suspend snapshots the live session into the suspended slot, overwriting any
// prior suspension, and removes the live session. No-op without one.
func (m *Manager) Suspend(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.live[userID]
	if !ok {
		return
	}
	m.suspended[userID] = cur.clone()
	delete(m.live, userID)
	logger.Info(logger.Background(), "service.sessions", "session.suspend",
		slog.Int64("user_id", userID),
		slog.String("lesson", logger.SanitizeLimit(cur.Lesson, 64)),
		slog.Int("step", cur.Step),
	)
}

// Active reports whether the user has a live session.
func (m *Manager) Active(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.live[userID]
	return ok
}

// Current returns a copy of the user's live session.
func (m *Manager) Current(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur, ok := m.live[userID]
	if !ok {
		return Session{}, false
	}
	return *cur.clone(), true
}

// AppendStudentTurn records what the student said. Silent no-op if the user
// has no live session (guards stale events).
func (m *Manager) AppendStudentTurn(userID int64, content string) {
	m.appendTurn(userID, RoleStudent, content)
}

// AppendTeacherTurn records the generated teacher reply. Silent no-op without
// a live session.
func (m *Manager) AppendTeacherTurn(userID int64, content string) {
	m.appendTurn(userID, RoleTeacher, content)
}

func (m *Manager) appendTurn(userID int64, role Role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.live[userID]
	if !ok {
		return
	}
	now := m.now()
	cur.Conversation = append(cur.Conversation, Turn{Role: role, Content: content, At: now})
	cur.LastUpdated = now
}

// AdvanceStep sets the step counter of the live session. Steps only move
// forward; a lower value is ignored. Silent no-op without a live session.
func (m *Manager) AdvanceStep(userID int64, newStep int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.live[userID]
	if !ok || newStep < cur.Step {
		return
	}
	cur.Step = newStep
	cur.LastUpdated = m.now()
}

// RecentTurns returns up to max most recent turns of the live conversation.
func (m *Manager) RecentTurns(userID int64, max int) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cur, ok := m.live[userID]
	if !ok || max <= 0 {
		return nil
	}
	turns := cur.Conversation
	if len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// LastTeacherSummary returns the most recent teacher turn of the live
// session, truncated to maxChars runes with an ellipsis. Returns the
// placeholder when no teacher turn exists yet.
func (m *Manager) LastTeacherSummary(userID int64, maxChars int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cur, ok := m.live[userID]
	if !ok {
		return NoSummaryPlaceholder
	}
	for i := len(cur.Conversation) - 1; i >= 0; i-- {
		if cur.Conversation[i].Role != RoleTeacher {
			continue
		}
		text := cur.Conversation[i].Content
		runes := []rune(text)
		if maxChars > 0 && len(runes) > maxChars {
			return string(runes[:maxChars]) + "..."
		}
		return text
	}
	return NoSummaryPlaceholder
}

// Reset drops both the live session and the suspension for the user.
func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, userID)
	delete(m.suspended, userID)
}

// Counts returns the number of live and suspended sessions.
func (m *Manager) Counts() (live, suspended int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live), len(m.suspended)
}
