package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }

func newTestBreaker(clock *manualClock) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		Now:              clock.Now,
	})
}

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	clock := &manualClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	boom := errors.New("boom")

	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(&manualClock{t: time.Unix(0, 0)})
	boom := errors.New("boom")

	_ = cb.Execute(func() error { return boom })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return boom })

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerHalfOpenProbe(t *testing.T) {
	clock := &manualClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock)
	boom := errors.New("boom")
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return boom })

	clock.t = clock.t.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, CBOpen, cb.State(), "failed probe reopens")

	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCBStateString(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(9).String())
}
