package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		MaxRequestsHalfOpen: 1,
	})

	failing := errors.New("upstream down")
	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), func() error { return failing })
		require.Error(t, err)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		MaxRequestsHalfOpen: 1,
	})

	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("boom") }))
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("boom") }))

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		MaxRequestsHalfOpen: 5,
	})

	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    1,
		SuccessThreshold:    1,
		Timeout:             10 * time.Millisecond,
		MaxRequestsHalfOpen: 1,
	})

	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("boom") }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("still down") }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_ContextCancelled(t *testing.T) {
	cb := New(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    1,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		MaxRequestsHalfOpen: 1,
	})

	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
}
