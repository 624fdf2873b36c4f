package presenter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/reel-bot-go/domain/fishing"
)

// Bot is the part of the fishing bot the presenter drives.
type Bot interface {
	Run(ctx context.Context) error
	Stats() fishing.Stats
	AddListener(fishing.StateListener)
}

// BotFactory builds a bot from the configuration as it is right now.
type BotFactory func() (Bot, error)

// RunModel provides running state access.
type RunModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// RunView updates UI elements affected by starting and stopping the bot.
type RunView interface {
	ConfigEditable(bool)
}

// RunPresenter owns starting and stopping the bot loop. A fresh bot is built
// on every start so configuration edits apply.
type RunPresenter struct {
	parent  context.Context
	model   RunModel
	factory BotFactory
	view    RunView
	onState fishing.StateListener
	logger  *slog.Logger

	mu     sync.Mutex
	bot    Bot
	cancel context.CancelFunc
	done   chan struct{}
	// ended is set when a run returns without Disable; Tick restores the view.
	ended bool
}

func NewRunPresenter(parent context.Context, model RunModel, factory BotFactory, view RunView, onState fishing.StateListener, logger *slog.Logger) *RunPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RunPresenter{parent: parent, model: model, factory: factory, view: view, onState: onState, logger: logger}
}

// Enable builds a bot and runs it in the background. Idempotent; refused
// while a previous run is still winding down.
func (p *RunPresenter) Enable() {
	if p == nil || p.model == nil || p.factory == nil || p.view == nil {
		return
	}
	if p.model.Enabled() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		select {
		case <-p.done:
		default:
			p.logger.Warn("previous run still stopping, start ignored")
			return
		}
	}
	bot, err := p.factory()
	if err != nil {
		p.logger.Error("bot setup failed", "error", err)
		return
	}
	if p.onState != nil {
		bot.AddListener(p.onState)
	}
	ctx, cancel := context.WithCancel(p.parent)
	done := make(chan struct{})
	p.bot, p.cancel, p.done, p.ended = bot, cancel, done, false
	p.model.SetEnabled(true)
	p.view.ConfigEditable(false)

	go func() {
		defer close(done)
		defer p.finish(done, cancel)
		if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("bot stopped", "error", err)
		}
	}()
}

// finish clears the run state once bot.Run has returned. The view is left
// to Tick since this runs off the UI thread.
func (p *RunPresenter) finish(done chan struct{}, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	if p.done == done && p.cancel != nil {
		p.cancel = nil
		p.ended = true
	}
	p.mu.Unlock()
	p.model.SetEnabled(false)
}

// Tick makes the configuration editable again after a run stopped by itself.
func (p *RunPresenter) Tick(time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	ended := p.ended
	p.ended = false
	p.mu.Unlock()
	if ended {
		p.view.ConfigEditable(true)
	}
}

// Disable cancels the running bot without blocking the UI thread. Idempotent.
func (p *RunPresenter) Disable() {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.model.SetEnabled(false)
	p.view.ConfigEditable(true)
}

// Toggle flips the running state delegating to Enable/Disable.
func (p *RunPresenter) Toggle() {
	if p == nil || p.model == nil {
		return
	}
	if p.model.Enabled() {
		p.Disable()
		return
	}
	p.Enable()
}

// Enabled reports whether the bot is running.
func (p *RunPresenter) Enabled() bool { return p != nil && p.model != nil && p.model.Enabled() }

// Stats returns the counters of the current or last bot.
func (p *RunPresenter) Stats() fishing.Stats {
	if p == nil {
		return fishing.Stats{}
	}
	p.mu.Lock()
	bot := p.bot
	p.mu.Unlock()
	if bot == nil {
		return fishing.Stats{}
	}
	return bot.Stats()
}

// Wait blocks until the current run has returned or timeout elapses.
func (p *RunPresenter) Wait(timeout time.Duration) bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
