package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusTransitions(t *testing.T) {
	all := []RequestStatus{StatusPending, StatusInProgress, StatusResolved, StatusClosed, StatusRejected}

	allowed := map[RequestStatus]map[RequestStatus]bool{
		StatusPending:    {StatusInProgress: true},
		StatusInProgress: {StatusResolved: true, StatusPending: true},
		StatusResolved:   {StatusClosed: true, StatusInProgress: true},
		StatusClosed:     {},
		StatusRejected:   {},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestRequestStatusSelfTransitionsRejected(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusInProgress, StatusResolved, StatusClosed, StatusRejected} {
		assert.False(t, s.CanTransitionTo(s), "%s -> %s should be rejected", s, s)
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.True(t, StatusClosed.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusResolved.Terminal())
}

func TestRequestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, RequestStatus("Archived").Valid())
	assert.False(t, RequestStatus("").Valid())
	// unknown statuses are not terminal either
	assert.False(t, RequestStatus("Archived").Terminal())
}

func TestAllowedTargetsIsACopy(t *testing.T) {
	targets := StatusInProgress.AllowedTargets()
	assert.ElementsMatch(t, []RequestStatus{StatusResolved, StatusPending}, targets)
	targets[0] = StatusClosed
	assert.ElementsMatch(t, []RequestStatus{StatusResolved, StatusPending}, StatusInProgress.AllowedTargets())
}
