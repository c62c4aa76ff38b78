package main

import (
	"errors"
	"testing"

	"github.com/hectorgimenez/tftbot/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOptionalSurfaceNeverFailsTheGroup(t *testing.T) {
	logger := testutil.DiscardLogger()

	assert.NoError(t, optional(logger, "discord", func() error { return errors.New("websocket: dial failed") })())
	assert.NoError(t, optional(logger, "http server", func() error { panic("bind: address already in use") })())

	ran := false
	assert.NoError(t, optional(logger, "telegram", func() error { ran = true; return nil })())
	assert.True(t, ran)
}
