// Package nav decides which screen to render for an inbound event and which
// store mutations the transition implies (suspend on exit, resume on entry).
// Rendering itself is pure: catalog plus progress snapshot in, view out.
package nav

import (
	"context"
	"log/slog"

	"github.com/neuroteach/tutorbot/core/logger"
	"github.com/neuroteach/tutorbot/internal/catalog"
	"github.com/neuroteach/tutorbot/internal/dialogue"
	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
)

// View is the rendered output of a screen transition.
type View = dialogue.View

// Controller owns the navigation transition table.
type Controller struct {
	catalog  *catalog.Catalog
	progress progress.Backend
	sessions *session.Manager
	engine   *dialogue.Engine
	wallet   string
}

// NewController wires the navigation controller. wallet may be empty to use
// the default TON address on the premium screen.
func NewController(cat *catalog.Catalog, tracker progress.Backend, sessions *session.Manager, engine *dialogue.Engine, wallet string) *Controller {
	if wallet == "" {
		wallet = defaultTonWallet
	}
	return &Controller{
		catalog:  cat,
		progress: tracker,
		sessions: sessions,
		engine:   engine,
		wallet:   wallet,
	}
}

// Dispatch routes a decoded event through the transition table.
func (c *Controller) Dispatch(ctx context.Context, userID int64, ev Event) View {
	switch ev.Kind {
	case OpenMain:
		return c.OpenMain(ctx, userID)
	case OpenPremium:
		return c.Premium(userID)
	case OpenProfile:
		return c.Profile(userID)
	case OpenFund:
		return c.Fund()
	case OpenHelp:
		return c.Help()
	case ResetProgress:
		return c.ResetProgress(ctx, userID)
	case OpenCourse:
		return c.OpenCourse(ctx, userID, ev.CourseID)
	case StartLesson:
		return c.StartLesson(ctx, userID, ev.CourseID, ev.LessonIndex)
	case BackToCourse:
		return c.BackToCourse(ctx, userID)
	case AskQuestion:
		return c.AskQuestion(ctx, userID)
	case NextSection:
		return c.NextSection(ctx, userID)
	default:
		logger.Debug(ctx, "nav", "event.unrecognized",
			slog.Int64("user_id", userID),
		)
		return c.OpenMain(ctx, userID)
	}
}

// OpenMain suspends any live session and renders the main menu.
func (c *Controller) OpenMain(ctx context.Context, userID int64) View {
	c.sessions.Suspend(userID)
	logger.Debug(ctx, "nav", "screen.render",
		slog.Int64("user_id", userID),
		slog.String("screen", "main"),
	)
	return c.renderMain()
}

// OpenCourse renders a course menu, degrading to the main menu when the
// course id does not resolve.
func (c *Controller) OpenCourse(ctx context.Context, userID int64, courseID string) View {
	c.sessions.Suspend(userID)
	course, err := c.catalog.Course(courseID)
	if err != nil {
		logger.Warn(ctx, "nav", "course.not_found",
			slog.Int64("user_id", userID),
			slog.String("course_id", courseID),
		)
		return c.renderMain()
	}
	logger.Debug(ctx, "nav", "screen.render",
		slog.Int64("user_id", userID),
		slog.String("screen", "course"),
		slog.String("course_id", courseID),
	)
	return c.renderCourse(course, userID)
}

// StartLesson opens a lesson: resume on exact suspension match, fresh start
// otherwise. Unresolvable references degrade to the main menu.
func (c *Controller) StartLesson(ctx context.Context, userID int64, courseID string, index int) View {
	lesson, err := c.catalog.Lesson(courseID, index)
	if err != nil {
		logger.Warn(ctx, "nav", "lesson.not_found",
			slog.Int64("user_id", userID),
			slog.String("course_id", courseID),
			slog.Int("lesson_index", index),
		)
		return c.renderMain()
	}
	logger.Info(ctx, "nav", "lesson.open",
		slog.Int64("user_id", userID),
		slog.String("course_id", courseID),
		slog.String("lesson", logger.SanitizeLimit(lesson, 64)),
	)
	return c.engine.StartOrResume(ctx, userID, lesson)
}

// BackToCourse suspends the live session and returns to its owning course,
// or to the main menu when the lesson maps to no known course.
func (c *Controller) BackToCourse(ctx context.Context, userID int64) View {
	cur, ok := c.sessions.Current(userID)
	c.sessions.Suspend(userID)
	if !ok {
		return c.renderMain()
	}
	course, found := c.catalog.CourseContaining(cur.Lesson)
	if !found {
		logger.Warn(ctx, "nav", "course.owner_missing",
			slog.Int64("user_id", userID),
			slog.String("lesson", logger.SanitizeLimit(cur.Lesson, 64)),
		)
		return c.renderMain()
	}
	return c.renderCourse(course, userID)
}

// LessonInput feeds free text into the live lesson. The second return value
// reports whether the text was consumed; when false the caller shows the
// main menu prompt without any store mutation.
func (c *Controller) LessonInput(ctx context.Context, userID int64, text string) (View, bool) {
	cur, ok := c.sessions.Current(userID)
	if !ok {
		return View{}, false
	}
	return c.engine.AdvanceTurn(ctx, userID, cur.Lesson, text), true
}

// AskQuestion renders a typed-question prompt for the live lesson without
// spending a generation call; the answer comes when the user actually types.
func (c *Controller) AskQuestion(ctx context.Context, userID int64) View {
	cur, ok := c.sessions.Current(userID)
	if !ok {
		return c.renderMain()
	}
	return renderAskPrompt(cur.Lesson)
}

// NextSection advances the live lesson one turn with no student input.
func (c *Controller) NextSection(ctx context.Context, userID int64) View {
	cur, ok := c.sessions.Current(userID)
	if !ok {
		return c.renderMain()
	}
	return c.engine.AdvanceTurn(ctx, userID, cur.Lesson, "")
}

// Profile renders the user's level, score and completion count.
func (c *Controller) Profile(userID int64) View {
	return c.renderProfile(c.progress.Snapshot(userID))
}

// Premium renders the premium pitch with a TON payment link.
func (c *Controller) Premium(userID int64) View {
	return renderPremium(c.wallet, userID)
}

// Fund renders the development fund screen.
func (c *Controller) Fund() View {
	return renderFund()
}

// Help renders the help screen.
func (c *Controller) Help() View {
	return renderHelp()
}

// ResetProgress wipes the user's progress record, live session and
// suspension, then shows the main menu with defaults.
func (c *Controller) ResetProgress(ctx context.Context, userID int64) View {
	c.progress.Reset(userID)
	c.sessions.Reset(userID)
	logger.Info(ctx, "nav", "progress.reset",
		slog.Int64("user_id", userID),
	)
	return c.renderMain()
}
