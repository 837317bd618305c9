package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		id   uint8
		cat  Category
		lane int
	}{
		{0, Fader, 0},
		{3, Fader, 3},
		{4, ExtFader, 0},
		{7, ExtFader, 3},
		{8, Unrecognized, -1},
		{32, Select, 0},
		{35, Select, 3},
		{36, Unrecognized, -1}, // extension bank has no selects
		{48, Mute, 0},
		{51, Mute, 3},
		{52, ExtMute, 0},
		{55, ExtMute, 3},
		{56, Unrecognized, -1},
		{127, Unrecognized, -1},
	}
	for _, tt := range tests {
		cat, lane := testLayout.Classify(tt.id)
		assert.Equal(t, tt.cat, cat, "id %d", tt.id)
		assert.Equal(t, tt.lane, lane, "id %d", tt.id)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	counts := map[Category]int{}
	for id := 0; id < 128; id++ {
		cat, _ := testLayout.Classify(uint8(id))
		counts[cat]++
	}
	for _, cat := range []Category{Select, Mute, Fader, ExtFader, ExtMute} {
		assert.Equal(t, Lanes, counts[cat], "category %s", cat)
	}
	assert.Equal(t, 128-5*Lanes, counts[Unrecognized])
}

func TestIDsDeriveFromFader(t *testing.T) {
	for lane := 0; lane < Lanes; lane++ {
		fader := testLayout.ID(Fader, lane)
		assert.Equal(t, fader+32, testLayout.ID(Select, lane))
		assert.Equal(t, fader+48, testLayout.ID(Mute, lane))
		assert.Equal(t, testLayout.ID(ExtFader, lane)+48, testLayout.ID(ExtMute, lane))
	}
}

func TestLightIDs(t *testing.T) {
	assert.Equal(t,
		[]uint8{32, 33, 34, 35, 36, 37, 38, 39, 48, 49, 50, 51, 52, 53, 54, 55},
		testLayout.LightIDs())

	// Extension selects carry LEDs but are not inputs.
	for id := uint8(36); id <= 39; id++ {
		cat, lane := testLayout.Classify(id)
		assert.Equal(t, Unrecognized, cat, "id %d", id)
		assert.Equal(t, -1, lane, "id %d", id)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"nanokontrol defaults", testLayout, false},
		{"shifted", Layout{FaderBase: 10, ExtFaderBase: 20, SelectOffset: 40}, false},
		{"banks overlap", Layout{FaderBase: 0, ExtFaderBase: 2, SelectOffset: 32}, true},
		{"select overlaps faders", Layout{FaderBase: 0, ExtFaderBase: 4, SelectOffset: 2}, true},
		{"extension faders overlap mutes", Layout{FaderBase: 0, ExtFaderBase: 48, SelectOffset: 32}, true},
		{"past 127", Layout{FaderBase: 0, ExtFaderBase: 4, SelectOffset: 110}, true},
	}
	for _, tt := range tests {
		err := tt.layout.Validate()
		if tt.wantErr {
			assert.Error(t, err, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}
