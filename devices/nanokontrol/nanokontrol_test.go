package nanokontrol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	devtest "github.com/Porma/nk2-volume-controller/devices/devicestesting"
	"github.com/Porma/nk2-volume-controller/engine"
)

func TestLayoutMatchesFactoryScene(t *testing.T) {
	require.NoError(t, Layout.Validate())

	tests := []struct {
		id   uint8
		cat  engine.Category
		lane int
	}{
		{0, engine.Fader, 0},
		{32, engine.Select, 0},
		{48, engine.Mute, 0},
		{7, engine.ExtFader, 3},
		{55, engine.ExtMute, 3},
		{39, engine.Unrecognized, -1}, // solo of strip 8
		{16, engine.Unrecognized, -1}, // knob of strip 1
	}
	for _, tt := range tests {
		cat, lane := Layout.Classify(tt.id)
		assert.Equal(t, tt.cat, cat, "id %d", tt.id)
		assert.Equal(t, tt.lane, lane, "id %d", tt.id)
	}
}

func TestNewListensOnChannelOne(t *testing.T) {
	port := devtest.NewMockMIDIPort()
	d := New(port, port)
	require.NoError(t, d.Open())
	defer d.Close()

	port.SimulateReceive(midi.ControlChange(1, 32, 127))
	port.SimulateReceive(midi.ControlChange(Channel, 33, 127))

	require.Eventually(t, func() bool {
		ev, ok := d.Poll()
		return ok && ev.Control == 33
	}, time.Second, time.Millisecond)

	require.NoError(t, d.SetLight(33, true))
	assert.Equal(t, midi.ControlChange(Channel, 33, 127).Bytes(), port.GetSentMessages()[0].Bytes())
}
