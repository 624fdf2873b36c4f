// Package ui hosts the Tk control window.
package ui

import (
	"context"
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/reel-bot-go/app"
	"github.com/soocke/reel-bot-go/ui/model"
	"github.com/soocke/reel-bot-go/ui/presenter"
	"github.com/soocke/reel-bot-go/ui/theme"
	"github.com/soocke/reel-bot-go/ui/view"
)

const (
	tick        = 100 * time.Millisecond
	exitTimeout = 3 * time.Second
)

// GUIOptions configures the control window.
type GUIOptions struct {
	ConfigPath string
	Dark       bool
	Width      int
	Height     int
}

// RunGUI shows the control window and blocks until it is closed. A running
// bot is stopped before the window is destroyed.
func RunGUI(ctx context.Context, c *app.Container, opts GUIOptions) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 760, 640
	}
	theme.InitStyles(opts.Dark)
	App.WmTitle("Reel Bot")
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", opts.Width, opts.Height))

	rv := view.NewRootView(c.Config, opts.ConfigPath, c.Logger)
	fsmP := presenter.NewFSMPresenter(rv)
	runP := presenter.NewRunPresenter(ctx, &model.RunModel{}, func() (presenter.Bot, error) {
		if err := c.AttachWindow(ctx); err != nil {
			return nil, err
		}
		bot, err := c.NewBot()
		if err != nil {
			return nil, err
		}
		return bot, nil
	}, rv, fsmP.OnState, c.Logger)
	sessP := presenter.NewSessionPresenter(model.NewSessionModel(), runP, rv)
	prevP := presenter.NewPreviewPresenter(model.NewPreviewModel(), c.AnnotatedRegions, rv, c.Logger)

	var afterID string
	exit := func() {
		if afterID != "" {
			TclAfterCancel(afterID)
		}
		runP.Disable()
		if !runP.Wait(exitTimeout) {
			c.Logger.Warn("bot did not stop before exit", "timeout", exitTimeout)
		}
		Destroy(App)
	}
	rv.Build(view.Handlers{OnToggleRun: runP.Toggle, OnPreview: prevP.Request, OnExit: exit})

	loop := presenter.NewLoop(sessP, fsmP, runP, prevP, nil)
	// TclAfter keeps every widget update on Tk's event loop thread.
	loop.Schedule = func() { afterID = TclAfter(tick, loop.Tick) }
	WmProtocol(App, "WM_DELETE_WINDOW", exit)
	loop.Schedule()
	App.Wait()
}
