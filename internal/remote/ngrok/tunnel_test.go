package ngrok

import (
	"context"
	"testing"

	"github.com/hectorgimenez/tftbot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Port = 9090
	cfg.Ngrok.Domain = "tft.ngrok.app"
	cfg.Ngrok.SendURL = true

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "http://127.0.0.1:9090", opts.LocalAddr)
	assert.True(t, opts.SendURL)
	assert.Len(t, opts.endpoint(), 1)

	opts.BasicAuthUser = "user"
	assert.Len(t, opts.endpoint(), 1, "basic auth needs a password too")
	opts.BasicAuthPass = "pass"
	assert.Len(t, opts.endpoint(), 2)
}

func TestStartRequiresLocalAddr(t *testing.T) {
	_, err := Start(context.Background(), Options{})
	require.Error(t, err)
}

func TestNilTunnel(t *testing.T) {
	var tun *Tunnel
	assert.Empty(t, tun.URL())
	assert.NoError(t, tun.Close())
}
