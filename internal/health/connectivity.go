package health

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/coder/quartz"
)

const (
	DefaultAddress = "1.1.1.1:53"
	dialTimeout    = 5 * time.Second
	checkInterval  = 5 * time.Second
)

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ConnectivityMonitor tracks sustained loss of internet access.
type ConnectivityMonitor struct {
	Address            string
	OfflineSustained   time.Duration // How long we must be offline before OnSustainedOffline fires
	CheckInterval      time.Duration
	Enabled            bool
	Logger             *slog.Logger
	OnSustainedOffline func()

	clock quartz.Clock
	dial  DialFunc

	mu           sync.Mutex
	offlineStart time.Time
	reported     bool
}

func NewConnectivityMonitor(logger *slog.Logger, clock quartz.Clock, address string, sustainedDuration time.Duration) *ConnectivityMonitor {
	if address == "" {
		address = DefaultAddress
	}
	d := &net.Dialer{Timeout: dialTimeout}

	return &ConnectivityMonitor{
		Address:          address,
		OfflineSustained: sustainedDuration,
		CheckInterval:    checkInterval,
		Enabled:          true,
		Logger:           logger,
		clock:            clock,
		dial:             d.DialContext,
	}
}

// WithDialer replaces the TCP dialer, tests use it to simulate outages.
func (m *ConnectivityMonitor) WithDialer(dial DialFunc) *ConnectivityMonitor {
	m.dial = dial
	return m
}

// Online opens and closes one TCP connection to the configured address.
func (m *ConnectivityMonitor) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := m.dial(ctx, "tcp", m.Address)
	if err != nil {
		m.Logger.Debug("Connectivity check failed", slog.String("address", m.Address), slog.Any("error", err))
		return false
	}
	_ = conn.Close()

	return true
}

// Observe records one check result and returns true the first time the outage lasted long enough.
func (m *ConnectivityMonitor) Observe(online bool) bool {
	if !m.Enabled {
		return false
	}
	now := m.clock.Now()

	m.mu.Lock()
	if online {
		if !m.offlineStart.IsZero() {
			m.Logger.Info("Internet connection is back", slog.Duration("offline_for", now.Sub(m.offlineStart)))
		}
		m.offlineStart = time.Time{}
		m.reported = false
		m.mu.Unlock()
		return false
	}

	if m.offlineStart.IsZero() {
		m.offlineStart = now
		m.Logger.Warn("Internet connection lost", slog.String("address", m.Address))
	}
	elapsed := now.Sub(m.offlineStart)
	fire := !m.reported && elapsed >= m.OfflineSustained
	if fire {
		m.reported = true
	}
	callback := m.OnSustainedOffline
	m.mu.Unlock()

	if fire {
		m.Logger.Error("Sustained connectivity loss", slog.Duration("duration", elapsed))
		if callback != nil {
			callback()
		}
	}

	return fire
}

// Run checks connectivity every CheckInterval until ctx is done.
func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	if !m.Enabled {
		return nil
	}
	for {
		m.Observe(m.Online(ctx))
		if err := m.sleep(ctx); err != nil {
			return nil
		}
	}
}

// WaitOnline returns once a connectivity check succeeds. A disabled monitor never waits.
func (m *ConnectivityMonitor) WaitOnline(ctx context.Context) error {
	if !m.Enabled {
		return nil
	}
	logged := false
	for {
		online := m.Online(ctx)
		m.Observe(online)
		if online {
			return nil
		}
		if !logged {
			m.Logger.Info("Waiting for the internet connection to come back")
			logged = true
		}
		if err := m.sleep(ctx); err != nil {
			return err
		}
	}
}

func (m *ConnectivityMonitor) sleep(ctx context.Context) error {
	t := m.clock.NewTimer(m.CheckInterval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
