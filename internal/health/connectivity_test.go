package health

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/hectorgimenez/tftbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNet struct {
	online atomic.Bool
	dials  atomic.Int32
}

func (f *fakeNet) dial(_ context.Context, network, address string) (net.Conn, error) {
	f.dials.Add(1)
	if !f.online.Load() {
		return nil, errors.New("network is unreachable")
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func newMonitor(t *testing.T) (*ConnectivityMonitor, *quartz.Mock, *fakeNet) {
	mock := quartz.NewMock(t)
	n := &fakeNet{}
	m := NewConnectivityMonitor(testutil.DiscardLogger(), mock, "", 30*time.Second).WithDialer(n.dial)
	return m, mock, n
}

func TestOnline(t *testing.T) {
	m, _, n := newMonitor(t)
	assert.Equal(t, DefaultAddress, m.Address)

	assert.False(t, m.Online(context.Background()))
	n.online.Store(true)
	assert.True(t, m.Online(context.Background()))
}

func TestObserveFiresOncePerOutage(t *testing.T) {
	m, mock, _ := newMonitor(t)
	fired := 0
	m.OnSustainedOffline = func() { fired++ }
	ctx := context.Background()

	assert.False(t, m.Observe(false))
	mock.Advance(20 * time.Second).MustWait(ctx)
	assert.False(t, m.Observe(false))
	mock.Advance(10 * time.Second).MustWait(ctx)
	assert.True(t, m.Observe(false))
	mock.Advance(10 * time.Second).MustWait(ctx)
	assert.False(t, m.Observe(false), "an outage is reported once")
	assert.Equal(t, 1, fired)

	// Back online resets the timer
	assert.False(t, m.Observe(true))
	assert.False(t, m.Observe(false))
	mock.Advance(30 * time.Second).MustWait(ctx)
	assert.True(t, m.Observe(false))
	assert.Equal(t, 2, fired)
}

func TestWaitOnlineBlocksUntilReachable(t *testing.T) {
	m, mock, n := newMonitor(t)
	stop := testutil.DriveClock(t, mock)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- m.WaitOnline(context.Background()) }()

	require.Eventually(t, func() bool { return n.dials.Load() >= 3 }, 5*time.Second, time.Millisecond)
	n.online.Store(true)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitOnline did not return")
	}
}

func TestDisabledMonitorNeverWaits(t *testing.T) {
	m, _, n := newMonitor(t)
	m.Enabled = false

	require.NoError(t, m.WaitOnline(context.Background()))
	assert.Zero(t, n.dials.Load())
	assert.False(t, m.Observe(false))
}
