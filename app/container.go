package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/reel-bot-go/assets"
	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/action"
	"github.com/soocke/reel-bot-go/domain/capture"
	"github.com/soocke/reel-bot-go/domain/fishing"
)

// Container assembles the platform services shared by every command.
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Windows   action.WindowSystem
	Window    *action.Window
	Actuator  *action.Actuator
	Frames    *capture.Source
	Matcher   capture.Matcher
	Templates *assets.Store
}

// BuildContainer constructs all components. Side effects are limited to
// selecting OS backends.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	grabber, err := capture.NewGrabber(cfg.Capture.Backend)
	if err != nil {
		return nil, err
	}
	m := cfg.Detection.Match
	matcher, err := capture.NewMatcher(capture.MatcherOptions{
		Engine:    m.Engine,
		MinScale:  m.MinScale,
		MaxScale:  m.MaxScale,
		ScaleStep: m.ScaleStep,
		Stride:    m.Stride,
		Workers:   m.Workers,
	}, logger)
	if err != nil {
		return nil, err
	}
	ad := cfg.AntiDetection
	human := action.NewHumanizer(action.HumanizeOptions{
		Enabled:      ad.Enabled,
		DelayMin:     ad.RandomDelayMin.D(),
		DelayMax:     ad.RandomDelayMax.D(),
		JitterPx:     ad.ClickJitterPx,
		ClickHoldMin: ad.ClickHoldMin.D(),
		ClickHoldMax: ad.ClickHoldMax.D(),
	}, uint64(time.Now().UnixNano()))

	windows := action.NewWindowSystem()
	return &Container{
		Config:    cfg,
		Logger:    logger,
		Windows:   windows,
		Window:    action.NewWindow(windows, cfg.Game.WindowTitle, logger),
		Actuator:  action.NewActuator(action.NewBackend(), human, logger),
		Frames:    capture.NewSource(grabber, logger),
		Matcher:   matcher,
		Templates: assets.NewStore(cfg.Game.TemplatesDir, logger),
	}, nil
}

// AttachWindow finds the game window and, when configured, brings it to the
// foreground. Missing templates are reported but not fatal.
func (c *Container) AttachWindow(ctx context.Context) error {
	c.Window.SetTitle(c.Config.Game.WindowTitle)
	info, err := c.Window.Find()
	if err != nil {
		return fmt.Errorf("game window: %w", err)
	}
	if c.Config.Game.ActivateWindow {
		if err := c.Window.Activate(); err != nil {
			c.Logger.Warn("window activation failed", "title", info.Title, "error", err)
		} else if err := action.Sleep(ctx, 500*time.Millisecond); err != nil {
			return err
		}
	}
	d := c.Config.Detection
	if err := c.Templates.Preload(d.Bite.Template, d.TensionBar.Template, d.RedTensionTemplate.Template,
		d.RodDurability.Template, d.RetryButton.Template); err != nil {
		c.Logger.Warn("templates missing, template checks will fail closed", "error", err)
	}
	return nil
}

// NewBot wires perception, the tension controller and the phase loop from
// the current configuration.
func (c *Container) NewBot() (*fishing.Bot, error) {
	cc, err := fishing.ControllerConfigFrom(c.Config)
	if err != nil {
		return nil, err
	}
	sense := fishing.NewPerception(c.Config.Detection, c.Config.Fishing.FishTracking, fishing.Sensors{
		Geometry:  c.Window,
		Frames:    c.Frames,
		Matcher:   c.Matcher,
		Templates: c.Templates,
	}, c.Logger)
	ctrl := fishing.NewController(cc, sense, c.Actuator, c.Logger)
	return fishing.NewBot(fishing.BotConfigFrom(c.Config), sense, c.Actuator, ctrl, c.Logger), nil
}
