package presenter

import (
	"sync"
	"time"

	"github.com/soocke/reel-bot-go/domain/fishing"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// FSMPresenter receives state transitions from the bot goroutine and reflects
// the latest one on the next UI tick.
type FSMPresenter struct {
	view StateView

	mu      sync.Mutex
	pending []fishing.FishingState
	latest  fishing.FishingState
	shown   bool
}

func NewFSMPresenter(view StateView) *FSMPresenter {
	return &FSMPresenter{view: view}
}

// OnState queues a transitioned state. It matches fishing.StateListener.
func (p *FSMPresenter) OnState(_, next fishing.FishingState) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick updates the view with the most recent queued state and clears the queue.
func (p *FSMPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if p.shown && last == p.latest {
		return
	}
	p.latest, p.shown = last, true
	p.view.SetStateLabel("State: " + last.String())
}
