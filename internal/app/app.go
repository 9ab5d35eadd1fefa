// Package app assembles the tutoring bot: stores, dialogue engine,
// navigation, messenger, registry wiring and the status server.
package app

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	corecmd "github.com/neuroteach/tutorbot/core/cmd"
	coreconfig "github.com/neuroteach/tutorbot/core/config"
	"github.com/neuroteach/tutorbot/core/logger"
	coretelegram "github.com/neuroteach/tutorbot/core/telegram"
	"github.com/neuroteach/tutorbot/core/telegram/callbacks"
	"github.com/neuroteach/tutorbot/core/telegram/commands"
	"github.com/neuroteach/tutorbot/core/telegram/helpers"
	"github.com/neuroteach/tutorbot/core/telegram/router"

	"github.com/neuroteach/tutorbot/internal/catalog"
	"github.com/neuroteach/tutorbot/internal/dialogue"
	"github.com/neuroteach/tutorbot/internal/llm"
	"github.com/neuroteach/tutorbot/internal/messenger"
	"github.com/neuroteach/tutorbot/internal/nav"
	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
	"github.com/neuroteach/tutorbot/internal/status"
)

// App holds the wired application components.
type App struct {
	cfg      *coreconfig.Config
	sessions *session.Manager
	tracker  *progress.Tracker
	ctrl     *nav.Controller
	msgr     *messenger.Messenger
	statusS  *status.Server
}

// Bootstrap loads configuration, initializes logging and wires the bot.
// It is the entrypoint handed to the generic runner.
func Bootstrap(configPath string) (*corecmd.App, error) {
	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}

	cat, err := catalog.LoadFile(cfg.Catalog.CoursesFile)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewGeminiProvider(context.Background(), llm.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini provider: %w", err)
	}

	a := build(cfg, cat, provider)
	return &corecmd.App{RunOptions: a.runOptions()}, nil
}

func build(cfg *coreconfig.Config, cat *catalog.Catalog, provider llm.Provider) *App {
	sessions := session.NewManager()
	tracker := progress.NewTracker()
	engine := dialogue.NewEngine(provider, sessions, tracker, dialogue.Options{
		MaxTokens:   cfg.Gemini.MaxOutputTokens,
		Temperature: cfg.Gemini.Temperature,
	})

	return &App{
		cfg:      cfg,
		sessions: sessions,
		tracker:  tracker,
		ctrl:     nav.NewController(cat, tracker, sessions, engine, ""),
		msgr:     messenger.New(),
	}
}

func (a *App) runOptions() coretelegram.RunOptions {
	reg := a.buildRegistry()

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(&conversation{app: a}, reg, router.TextOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.cfg.Status.Enabled {
				a.statusS = status.New(a.tracker, a.sessions, a.cfg.Gemini.Model)
				a.statusS.Start(a.cfg.Status.Listen, a.cfg.Status.Port)
			}
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.statusS != nil {
				return a.statusS.Shutdown()
			}
			return nil
		},
	}
}

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.showMain,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     a.showMain,
		Description: "Открыть меню",
		Aliases:     []string{"m"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.showProfile,
		Description: "Ваш прогресс",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.showHelp,
		Description: "Как учиться с ботом",
	})

	for _, key := range []string{
		nav.KeyMain, nav.KeyPremium, nav.KeyProfile, nav.KeyFund,
		nav.KeyHelp, nav.KeyReset, nav.KeyCourse, nav.KeyLesson,
		nav.KeyBack, nav.KeyAsk, nav.KeyNext,
	} {
		_ = reg.RegisterCallback(key, a.callbackHandler(key))
	}

	// Unknown callbacks and stray text both land on the main menu.
	reg.SetCallbackNotFound(a.showMain)
	reg.SetTextFallback(a.showMain)

	return reg
}

// callbackHandler decodes the pressed button into a typed event and routes
// it through the navigation controller.
func (a *App) callbackHandler(key string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.BuildContext(c)
		userID := c.Sender().ID

		// The pressed message becomes the render target for in-place edits.
		if msg := c.Message(); msg != nil && c.Chat() != nil {
			a.msgr.Track(userID, c.Chat().ID, msg.ID)
		}

		ev := nav.DecodeCallback(key, callbacks.CallbackPayload(c))
		if ev.Kind == nav.ResetProgress {
			defer a.msgr.Forget(userID)
		}
		view := a.ctrl.Dispatch(ctx, userID, ev)
		return a.render(c, view)
	}
}

func (a *App) showMain(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	return a.render(c, a.ctrl.OpenMain(ctx, c.Sender().ID))
}

func (a *App) showProfile(c tele.Context) error {
	return a.render(c, a.ctrl.Profile(c.Sender().ID))
}

func (a *App) showHelp(c tele.Context) error {
	return a.render(c, a.ctrl.Help())
}

func (a *App) render(c tele.Context, view nav.View) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	a.msgr.Render(c.Bot(), c.Sender().ID, chat.ID, view.Text, view.Keyboard)
	return nil
}

// conversation gates free text into the live lesson dialogue.
type conversation struct {
	app *App
}

func (cv *conversation) Active(userID int64) bool {
	return cv.app.sessions.Active(userID)
}

func (cv *conversation) Handle(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	// The student's free text is folded into the dialogue; the inbound
	// message itself is removed to keep the chat a single living screen.
	_ = helpers.DeleteInbound(c)

	view, handled := cv.app.ctrl.LessonInput(ctx, userID, c.Text())
	if !handled {
		view = cv.app.ctrl.OpenMain(ctx, userID)
	}
	return cv.app.render(c, view)
}
