package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/ledger"
)

func TestGet_FreshSnapshotSkipsRefresh(t *testing.T) {
	mock := ledger.NewMock()
	c := New(mock, zerolog.Nop())

	_, err := c.ForceRefresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, mock.BalanceCallCount())

	// Any maxAge the snapshot's age fits inside must serve from cache.
	for _, maxAge := range []time.Duration{time.Second, time.Minute, time.Hour} {
		snap, err := c.Get(context.Background(), maxAge)
		require.NoError(t, err)
		assert.NotNil(t, snap)
	}
	assert.Equal(t, 1, mock.BalanceCallCount())
}

func TestGet_ExpiredSnapshotRefreshes(t *testing.T) {
	mock := ledger.NewMock()
	c := New(mock, zerolog.Nop())

	_, err := c.ForceRefresh(context.Background())
	require.NoError(t, err)

	// Move the clock past any maxAge.
	c.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	_, err = c.Get(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.BalanceCallCount())
}

func TestForceRefresh_FailureKeepsPriorSnapshot(t *testing.T) {
	mock := ledger.NewMock()
	c := New(mock, zerolog.Nop())

	first, err := c.ForceRefresh(context.Background())
	require.NoError(t, err)

	mock.SetQueryErr(errors.New("node unreachable"))
	_, err = c.ForceRefresh(context.Background())
	require.Error(t, err)

	var stale *StaleDataError
	assert.True(t, errors.As(err, &stale))

	// Stale but valid: the previous snapshot is untouched.
	assert.Same(t, first, c.Current())
}

func TestForceRefresh_NoPartialSnapshot(t *testing.T) {
	mock := ledger.NewMock()
	c := New(mock, zerolog.Nop())

	mock.SetQueryErr(errors.New("boom"))
	_, err := c.ForceRefresh(context.Background())
	require.Error(t, err)
	assert.Nil(t, c.Current())
}

func TestForceRefresh_SingleFlight(t *testing.T) {
	mock := ledger.NewMock()
	mock.Blocking = true
	c := New(mock, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := c.ForceRefresh(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, snap)
		}()
	}

	// Let every caller reach the in-flight refresh, then release it.
	time.Sleep(50 * time.Millisecond)
	mock.Release()
	wg.Wait()

	assert.Equal(t, 1, mock.BalanceCallCount())
}
