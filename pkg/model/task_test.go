//go:build unit || !integration

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskStateTransitions(t *testing.T) {
	require.True(t, TaskStateSubmitted.CanTransitionTo(TaskStateAccepted))
	require.True(t, TaskStateAccepted.CanTransitionTo(TaskStateRunning))
	require.True(t, TaskStateRunning.CanTransitionTo(TaskStateCompleted))
	require.True(t, TaskStateRunning.CanTransitionTo(TaskStateFailed))
	require.True(t, TaskStateRunning.CanTransitionTo(TaskStateTimedOut))

	require.False(t, TaskStateSubmitted.CanTransitionTo(TaskStateRunning))
	require.False(t, TaskStateRunning.CanTransitionTo(TaskStateAccepted))

	for _, terminal := range []TaskState{TaskStateCompleted, TaskStateFailed, TaskStateTimedOut} {
		require.True(t, terminal.IsTerminal())
		for next := TaskStateSubmitted; next <= TaskStateTimedOut; next++ {
			require.False(t, terminal.CanTransitionTo(next), "%s -> %s should be rejected", terminal, next)
		}
	}
}

func TestEscrowStateTransitions(t *testing.T) {
	require.True(t, EscrowStateOpen.CanTransitionTo(EscrowStateReleased))
	require.True(t, EscrowStateOpen.CanTransitionTo(EscrowStateRefunded))
	require.True(t, EscrowStateOpen.CanTransitionTo(EscrowStateDisputed))

	// disputed escrows can still settle either way
	require.True(t, EscrowStateDisputed.CanTransitionTo(EscrowStateReleased))
	require.True(t, EscrowStateDisputed.CanTransitionTo(EscrowStateRefunded))
	require.False(t, EscrowStateDisputed.CanTransitionTo(EscrowStateDisputed))

	for _, terminal := range []EscrowState{EscrowStateReleased, EscrowStateRefunded} {
		require.True(t, terminal.IsTerminal())
		for next := EscrowStateOpen; next <= EscrowStateDisputed; next++ {
			require.False(t, terminal.CanTransitionTo(next))
		}
	}
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("USDC")
	require.NoError(t, err)
	require.Equal(t, CurrencyUSDC, c)

	_, err = ParseCurrency("SHELLS")
	require.Error(t, err)
}
