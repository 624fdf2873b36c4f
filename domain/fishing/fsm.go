package fishing

import (
	"log/slog"
	"sync"
)

var transitions = map[FishingState][]FishingState{
	StateIdle:            {StatePreparing, StateCasting, StateHalted},
	StatePreparing:       {StateCasting, StateIdle, StateHalted},
	StateCasting:         {StateWaitingBite, StateIdle, StateHalted},
	StateWaitingBite:     {StateReeling, StateResetting, StateIdle, StateHalted},
	StateReeling:         {StateTensionTracking, StateResetting, StateIdle, StateHalted},
	StateTensionTracking: {StateResetting, StateIdle, StateHalted},
	StateResetting:       {StateIdle, StateHalted},
	StateHalted:          {StateIdle},
}

// CanTransition reports whether from -> to is an allowed phase change.
func CanTransition(from, to FishingState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// stateMachine holds the current phase and notifies listeners on change.
type stateMachine struct {
	mu        sync.Mutex
	state     FishingState
	listeners []StateListener
	logger    *slog.Logger
}

func newStateMachine(logger *slog.Logger) *stateMachine {
	return &stateMachine{state: StateIdle, logger: orNop(logger)}
}

func (m *stateMachine) Current() FishingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *stateMachine) AddListener(l StateListener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// transition moves to next. Invalid transitions are logged and ignored.
func (m *stateMachine) transition(next FishingState) bool {
	m.mu.Lock()
	prev := m.state
	if prev == next {
		m.mu.Unlock()
		return true
	}
	if !CanTransition(prev, next) {
		m.mu.Unlock()
		m.logger.Warn("invalid fishing state transition", "from", prev.String(), "to", next.String())
		return false
	}
	m.state = next
	ls := append([]StateListener(nil), m.listeners...)
	m.mu.Unlock()

	m.logger.Debug("fishing state transition", "from", prev.String(), "to", next.String())
	for _, l := range ls {
		func() {
			defer recoverLog(m.logger, "state listener panic")
			l(prev, next)
		}()
	}
	return true
}
