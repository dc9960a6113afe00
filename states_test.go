package celerybridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Ready(t *testing.T) {
	cases := []struct {
		state State
		ready bool
	}{
		{StatePending, false},
		{StateSuccess, true},
		{StateFailure, true},
		{StateRevoked, true},
		{StateError, true},
		{State("STARTED"), false},
		{State("RETRY"), false},
		{State(""), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ready, tc.state.Ready(), "state %q", tc.state)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "SUCCESS", StateSuccess.String())
}
