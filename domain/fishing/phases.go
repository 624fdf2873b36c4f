package fishing

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/action"
	"github.com/soocke/reel-bot-go/domain/geometry"
)

// trigger performs a configured key press or click. Actuator errors are
// logged and swallowed; a missing window is reported.
func (b *Bot) trigger(ctx context.Context, what, kind, key string, pos geometry.NormalizedPoint) error {
	var err error
	if kind == "click" {
		p, ok := b.sense.Point(pos)
		if !ok {
			return fmt.Errorf("%s: %w", what, ErrNoGeometry)
		}
		b.logger.Info(what+" by click", "x", p.X, "y", p.Y)
		err = b.act.Click(ctx, p, action.ButtonLeft, b.cfg.MoveDuration)
	} else {
		b.logger.Info(what+" by key", "key", key)
		err = b.act.PressKey(ctx, key, 0)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn(what+" action failed", "error", err)
	}
	return nil
}

func (b *Bot) cast(ctx context.Context) error {
	f := b.cfg.Fishing
	if err := b.trigger(ctx, "cast", f.CastType, f.CastKey, f.CastClickPos); err != nil {
		return err
	}
	return b.sleep(ctx, f.CastDelay.D())
}

func (b *Bot) reel(ctx context.Context) error {
	f := b.cfg.Fishing
	if err := b.trigger(ctx, "reel", f.ReelType, f.ReelKey, f.ReelClickPos); err != nil {
		return err
	}
	return b.sleep(ctx, f.ReelDelay.D())
}

// waitBite polls the bite indicator for up to BiteTimeout, BiteRetries times.
func (b *Bot) waitBite(ctx context.Context) (bool, error) {
	f := b.cfg.Fishing
	for attempt := 1; attempt <= f.BiteRetries; attempt++ {
		b.sense.ResetBite()
		deadline := time.Now().Add(f.BiteTimeout.D())
		for time.Now().Before(deadline) {
			if b.sense.BiteDetected() {
				return true, nil
			}
			if err := b.sleep(ctx, f.BiteCheckInterval.D()); err != nil {
				return false, err
			}
		}
		b.logger.Info("bite wait timed out", "attempt", attempt, "retries", f.BiteRetries)
	}
	return false, nil
}

// poll looks for tc until pc.SearchTimeout elapses, checking at least once.
func (b *Bot) poll(ctx context.Context, tc config.TemplateCheck, pc config.PollConfig) (image.Point, bool, error) {
	deadline := time.Now().Add(pc.SearchTimeout.D())
	for {
		if p, ok := b.sense.Locate(tc); ok {
			return p, true, nil
		}
		if !time.Now().Before(deadline) {
			return image.Point{}, false, nil
		}
		if err := b.sleep(ctx, pc.CheckInterval.D()); err != nil {
			return image.Point{}, false, err
		}
	}
}

// prepare replaces a depleted rod before casting.
func (b *Bot) prepare(ctx context.Context) error {
	rc := b.cfg.Rod
	if err := b.sleep(ctx, rc.WaitTime.D()); err != nil {
		return err
	}
	if !b.sense.Available() {
		b.logger.Warn("window unavailable, skipping rod check")
		return nil
	}
	_, found, err := b.poll(ctx, rc.TemplateCheck, rc.PollConfig)
	if err != nil {
		return err
	}
	if found {
		b.logger.Info("rod depleted, replacing")
		if err := b.replaceRod(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("rod replacement failed", "error", err)
		}
	}
	return b.sleep(ctx, rc.ResponseDelay.D())
}

// replaceRod clicks the two replacement points with the modifier held. The
// modifier is released on every exit path, panics included.
func (b *Bot) replaceRod(ctx context.Context) error {
	rc := b.cfg.Rod
	if err := b.act.KeyDown(rc.ModifierKey); err != nil {
		b.logger.Warn("modifier down failed", "key", rc.ModifierKey, "error", err)
	}
	defer func() {
		if err := b.act.KeyUp(rc.ModifierKey); err != nil {
			b.logger.Warn("modifier up failed", "key", rc.ModifierKey, "error", err)
		}
	}()
	for i, pt := range []geometry.NormalizedPoint{rc.FirstClick, rc.SecondClick} {
		if i > 0 {
			if err := b.sleep(ctx, rc.ClickDelay.D()); err != nil {
				return err
			}
		}
		p, ok := b.sense.Point(pt)
		if !ok {
			return ErrNoGeometry
		}
		if err := b.act.Click(ctx, p, action.ButtonLeft, b.cfg.MoveDuration); err != nil {
			return err
		}
	}
	return nil
}

// reset clicks the retry button when it shows up. Not finding it is logged
// and the cycle continues.
func (b *Bot) reset(ctx context.Context) error {
	rb := b.cfg.Retry
	if err := b.sleep(ctx, rb.WaitTime.D()); err != nil {
		return err
	}
	if !b.sense.Available() {
		b.logger.Warn("window unavailable, skipping reset")
		return nil
	}
	p, found, err := b.poll(ctx, rb.TemplateCheck, rb.PollConfig)
	if err != nil {
		return err
	}
	if !found {
		b.logger.Warn("retry button not found")
		return b.sleep(ctx, rb.NotFoundDelay.D())
	}
	if err := b.sleep(ctx, rb.ClickDelay.D()); err != nil {
		return err
	}
	if err := b.act.Click(ctx, p, action.ButtonLeft, b.cfg.MoveDuration); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("retry click failed", "error", err)
	} else {
		b.logger.Info("retry button clicked", "x", p.X, "y", p.Y)
	}
	return b.sleep(ctx, rb.ResponseDelay.D())
}
