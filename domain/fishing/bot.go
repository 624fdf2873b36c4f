package fishing

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/domain/action"
)

// BotConfig is the slice of configuration the phase loop needs.
type BotConfig struct {
	Fishing      config.FishingConfig
	Rod          config.RodDurabilityConfig
	Retry        config.RetryButtonConfig
	MoveDuration time.Duration
	RestMin      time.Duration
	RestMax      time.Duration
}

func BotConfigFrom(cfg *config.Config) BotConfig {
	ad := cfg.AntiDetection
	bc := BotConfig{
		Fishing:      cfg.Fishing,
		Rod:          cfg.Detection.RodDurability,
		Retry:        cfg.Detection.RetryButton,
		MoveDuration: ad.MouseMoveDuration.D(),
	}
	if ad.Enabled {
		bc.RestMin, bc.RestMax = ad.RestTimeMin.D(), ad.RestTimeMax.D()
	}
	return bc
}

// EpisodeRunner runs one tension episode.
type EpisodeRunner interface {
	Run(ctx context.Context) (Outcome, error)
}

var _ EpisodeRunner = (*Controller)(nil)

// Stats is a snapshot of the bot counters.
type Stats struct {
	State     FishingState
	Cycles    int64
	Catches   int64
	Episodes  int64
	Failures  int64
	LastCatch time.Time
}

// Bot drives the phase state machine: rod check, cast, bite wait, reel,
// tension episode and reset, forever.
type Bot struct {
	cfg      BotConfig
	sense    Senses
	act      Actuator
	episodes EpisodeRunner
	logger   *slog.Logger
	fsm      *stateMachine
	sleep    func(ctx context.Context, d time.Duration) error

	cycles    atomic.Int64
	catches   atomic.Int64
	episodesN atomic.Int64
	failures  atomic.Int64
	lastCatch atomic.Int64
}

func NewBot(cfg BotConfig, sense Senses, act Actuator, episodes EpisodeRunner, logger *slog.Logger) *Bot {
	logger = orNop(logger)
	return &Bot{
		cfg:      cfg,
		sense:    sense,
		act:      act,
		episodes: episodes,
		logger:   logger,
		fsm:      newStateMachine(logger),
		sleep:    action.Sleep,
	}
}

func (b *Bot) Current() FishingState { return b.fsm.Current() }

func (b *Bot) AddListener(l StateListener) { b.fsm.AddListener(l) }

func (b *Bot) Stats() Stats {
	s := Stats{
		State:    b.fsm.Current(),
		Cycles:   b.cycles.Load(),
		Catches:  b.catches.Load(),
		Episodes: b.episodesN.Load(),
		Failures: b.failures.Load(),
	}
	if ns := b.lastCatch.Load(); ns != 0 {
		s.LastCatch = time.Unix(0, ns)
	}
	return s
}

// Run loops fishing cycles until ctx is cancelled, then halts. A failed or
// panicking cycle is logged and followed by the error cooldown.
func (b *Bot) Run(ctx context.Context) error {
	b.fsm.transition(StateIdle)
	b.logger.Info("fishing bot started")
	for ctx.Err() == nil {
		err := b.safeCycle(ctx)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			b.failures.Add(1)
			cooldown := b.cfg.Fishing.ErrorCooldown.D()
			b.logger.Error("fishing cycle failed", "error", err, "cooldown", cooldown)
			b.fsm.transition(StateIdle)
			if b.sleep(ctx, cooldown) != nil {
				break
			}
			continue
		}
		s := b.Stats()
		rest := b.rest()
		b.logger.Info("fishing cycle finished", "cycles", s.Cycles, "catches", s.Catches, "rest", rest)
		if b.sleep(ctx, rest) != nil {
			break
		}
	}
	b.fsm.transition(StateHalted)
	s := b.Stats()
	b.logger.Info("fishing bot stopped", "cycles", s.Cycles, "catches", s.Catches, "failures", s.Failures)
	return nil
}

func (b *Bot) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("fishing cycle panic", "error", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return b.cycle(ctx)
}

func (b *Bot) cycle(ctx context.Context) error {
	b.cycles.Add(1)
	if b.cfg.Rod.Enabled {
		b.fsm.transition(StatePreparing)
		if err := b.prepare(ctx); err != nil {
			return err
		}
	}

	b.fsm.transition(StateCasting)
	if err := b.cast(ctx); err != nil {
		return err
	}

	b.fsm.transition(StateWaitingBite)
	bitten, err := b.waitBite(ctx)
	if err != nil {
		return err
	}
	if bitten {
		b.fsm.transition(StateReeling)
		if err := b.reel(ctx); err != nil {
			return err
		}
		b.catches.Add(1)
		b.lastCatch.Store(time.Now().UnixNano())
		if b.sense.TensionBarPresent() {
			b.fsm.transition(StateTensionTracking)
			b.episodesN.Add(1)
			outcome, err := b.episodes.Run(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				b.logger.Warn("tension episode failed", "outcome", outcome.String(), "error", err)
			}
		} else {
			b.logger.Debug("no tension bar after reel")
		}
	} else {
		b.logger.Info("no bite, resetting", "attempts", b.cfg.Fishing.BiteRetries)
	}

	b.fsm.transition(StateResetting)
	if err := b.reset(ctx); err != nil {
		return err
	}
	b.fsm.transition(StateIdle)
	return nil
}

// rest is uniform in [RestMin, RestMax].
func (b *Bot) rest() time.Duration {
	lo, hi := b.cfg.RestMin, b.cfg.RestMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)))
}
