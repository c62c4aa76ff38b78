package hotkey

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/hectorgimenez/tftbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in        string
		modifiers []int
		key       int
		wantErr   bool
	}{
		{in: "alt+p", modifiers: []int{vkAlt}, key: 'P'},
		{in: " Ctrl + Shift + N ", modifiers: []int{vkControl, vkShift}, key: 'N'},
		{in: "f9", key: vkF1 + 8},
		{in: "alt+1", modifiers: []int{vkAlt}, key: '1'},
		{in: "alt+space", modifiers: []int{vkAlt}, key: vkSpace},
		{in: "", wantErr: true},
		{in: "p+alt", wantErr: true},
		{in: "alt+f13", wantErr: true},
		{in: "alt+", wantErr: true},
	}
	for _, tt := range tests {
		c, err := ParseCombo(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.modifiers, c.Modifiers, tt.in)
		assert.Equal(t, tt.key, c.Key, tt.in)
	}
}

func TestListenerFiresOncePerPress(t *testing.T) {
	down := map[int]bool{}
	l := NewListener(testutil.DiscardLogger(), quartz.NewMock(t), func(vk int) bool { return down[vk] })

	pauses, next := 0, 0
	require.NoError(t, l.Register("pause", "alt+p", func() { pauses++ }))
	require.NoError(t, l.Register("play_next_game", "alt+n", func() { next++ }))
	assert.Error(t, l.Register("broken", "alt+", func() {}))

	down['P'] = true
	l.Poll()
	assert.Zero(t, pauses, "modifier missing")

	down[vkAlt] = true
	l.Poll()
	l.Poll()
	l.Poll()
	assert.Equal(t, 1, pauses, "holding fires once")

	down['P'] = false
	l.Poll()
	down['P'] = true
	l.Poll()
	assert.Equal(t, 2, pauses)
	assert.Zero(t, next)
}
