package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	failures int
	calls    int
}

func (s *stubPinger) Ping(ctx context.Context) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForDatabaseImmediateSuccess(t *testing.T) {
	p := &stubPinger{}

	err := waitForDatabase(context.Background(), p, zerolog.Nop(), time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestWaitForDatabaseRetriesUntilReachable(t *testing.T) {
	p := &stubPinger{failures: 3}

	err := waitForDatabase(context.Background(), p, zerolog.Nop(), time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 4, p.calls)
}

func TestWaitForDatabaseTimesOut(t *testing.T) {
	p := &stubPinger{failures: 1000}

	err := waitForDatabase(context.Background(), p, zerolog.Nop(), 5*time.Millisecond, 30*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
	assert.Greater(t, p.calls, 1)
}

func TestWaitForDatabaseRespectsCancellation(t *testing.T) {
	p := &stubPinger{failures: 1000}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForDatabase(ctx, p, zerolog.Nop(), time.Millisecond, time.Second)
	assert.Error(t, err)
}
