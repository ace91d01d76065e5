package mcp

import (
	"fmt"

	"shinkuro/internal/logging"
)

// State is a protocol session state.
type State int

const (
	StateUninitialized State = iota
	StateAwaitingInitialized
	StateReady
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingInitialized:
		return "awaiting_initialized"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transitions lists the allowed edges. Terminated is reachable from every
// state because end of input can arrive at any time.
var transitions = map[State][]State{
	StateUninitialized:       {StateAwaitingInitialized, StateTerminated},
	StateAwaitingInitialized: {StateReady, StateTerminated},
	StateReady:               {StateTerminated},
}

// Session tracks the lifecycle of the single client connection.
type Session struct {
	state  State
	logger *logging.AppLogger
}

// NewSession returns a session in StateUninitialized.
func NewSession(logger *logging.AppLogger) *Session {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Session{state: StateUninitialized, logger: logger}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Transition moves to next or returns an error if the edge does not exist.
func (s *Session) Transition(next State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == next {
			s.logger.LogStateTransition("session", s.state.String(), next.String())
			s.state = next
			return nil
		}
	}
	return fmt.Errorf("invalid session transition %s -> %s", s.state, next)
}
