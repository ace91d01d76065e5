package mcp

import (
	"testing"

	"shinkuro/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []State
		wantErr bool
	}{
		{"handshake then shutdown", []State{StateAwaitingInitialized, StateReady, StateTerminated}, false},
		{"eof before initialize", []State{StateTerminated}, false},
		{"eof during handshake", []State{StateAwaitingInitialized, StateTerminated}, false},
		{"skip initialize", []State{StateReady}, true},
		{"initialize twice", []State{StateAwaitingInitialized, StateAwaitingInitialized}, true},
		{"leave terminated", []State{StateTerminated, StateReady}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := logging.NewTestLogger()
			s := NewSession(logger)
			require.Equal(t, StateUninitialized, s.State())

			var err error
			for _, next := range tt.path {
				before := s.State()
				if err = s.Transition(next); err != nil {
					assert.Equal(t, before, s.State())
					break
				}
				assert.Equal(t, next, s.State())
			}

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_LogsTransitions(t *testing.T) {
	logger, buf := logging.NewTestLogger()
	s := NewSession(logger)

	require.NoError(t, s.Transition(StateAwaitingInitialized))
	assert.Contains(t, buf.String(), "uninitialized")
	assert.Contains(t, buf.String(), "awaiting_initialized")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "awaiting_initialized", StateAwaitingInitialized.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "state(9)", State(9).String())
}
