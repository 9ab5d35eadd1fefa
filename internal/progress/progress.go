// Package progress tracks per-user learning progress: completed lessons,
// level and score. State lives in memory for the process lifetime.
package progress

import (
	"log/slog"
	"sync"
	"time"

	"github.com/neuroteach/tutorbot/core/logger"
)

// Points granted per first-time lesson completion. Level grows by one for
// every two distinct completions.
const (
	completionScore  = 10
	lessonsPerLevel  = 2
	defaultUserLevel = 1
)

// Snapshot is a read-only view of a user's progress. The zero user gets
// {Level: 1} defaults.
type Snapshot struct {
	Completed    map[string]struct{}
	Level        int
	Score        int
	LastActivity time.Time
}

// CompletedCount returns the number of distinct completed lessons.
func (s Snapshot) CompletedCount() int { return len(s.Completed) }

// IsCompleted reports whether the lesson was ever completed.
func (s Snapshot) IsCompleted(lesson string) bool {
	_, ok := s.Completed[lesson]
	return ok
}

// Backend abstracts progress storage. The in-memory implementation below is
// the only one today; a persistent backend can be plugged in here later.
type Backend interface {
	// RecordCompletion credits a lesson once per user; repeated calls for the
	// same lesson are no-ops. It reports whether the completion was new.
	RecordCompletion(userID int64, lesson string) bool
	// Snapshot returns the user's progress, defaults included. Never fails.
	Snapshot(userID int64) Snapshot
	// Reset removes the user's record entirely.
	Reset(userID int64)
	// Users returns the number of users with a progress record.
	Users() int
}

type record struct {
	completed    map[string]struct{}
	level        int
	score        int
	lastActivity time.Time
}

// Tracker is the in-memory Backend.
type Tracker struct {
	mu    sync.RWMutex
	users map[int64]*record
	now   func() time.Time
}

// NewTracker creates an empty in-memory progress tracker.
func NewTracker() *Tracker {
	return &Tracker{
		users: make(map[int64]*record),
		now:   time.Now,
	}
}

// RecordCompletion implements Backend.
func (t *Tracker) RecordCompletion(userID int64, lesson string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.users[userID]
	if !ok {
		rec = &record{
			completed: make(map[string]struct{}),
			level:     defaultUserLevel,
		}
		t.users[userID] = rec
	}

	if _, done := rec.completed[lesson]; done {
		rec.lastActivity = t.now()
		return false
	}

	rec.completed[lesson] = struct{}{}
	rec.score += completionScore
	if len(rec.completed)%lessonsPerLevel == 0 {
		rec.level++
	}
	rec.lastActivity = t.now()

	logger.Info(logger.Background(), "service.progress", "completion",
		slog.Int64("user_id", userID),
		slog.String("lesson", logger.SanitizeLimit(lesson, 64)),
		slog.Int("completed", len(rec.completed)),
		slog.Int("level_value", rec.level),
		slog.Int("score", rec.score),
	)
	return true
}

// Snapshot implements Backend.
func (t *Tracker) Snapshot(userID int64) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.users[userID]
	if !ok {
		return Snapshot{Completed: map[string]struct{}{}, Level: defaultUserLevel}
	}
	completed := make(map[string]struct{}, len(rec.completed))
	for lesson := range rec.completed {
		completed[lesson] = struct{}{}
	}
	return Snapshot{
		Completed:    completed,
		Level:        rec.level,
		Score:        rec.score,
		LastActivity: rec.lastActivity,
	}
}

// Reset implements Backend.
func (t *Tracker) Reset(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.users[userID]; !ok {
		return
	}
	delete(t.users, userID)
	logger.Info(logger.Background(), "service.progress", "reset",
		slog.Int64("user_id", userID),
	)
}

// Users implements Backend.
func (t *Tracker) Users() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.users)
}
