package engine

import "fmt"

// Lanes is the number of lanes in each bank.
const Lanes = 4

// muteGap is the distance between the select and mute rows of the surface.
const muteGap = 16

// Category is the kind of physical control an id belongs to.
type Category uint8

const (
	Unrecognized Category = iota
	Select
	Mute
	Fader
	ExtFader
	ExtMute
)

func (c Category) String() string {
	switch c {
	case Select:
		return "select"
	case Mute:
		return "mute"
	case Fader:
		return "fader"
	case ExtFader:
		return "ext_fader"
	case ExtMute:
		return "ext_mute"
	default:
		return "unrecognized"
	}
}

// Layout places the control ids of both banks. Every control of a lane is
// derived from its fader id: selects sit SelectOffset above the faders and
// mutes sit a further 16 above the selects. The extension bank uses the same
// offsets from ExtFaderBase but has no selects.
type Layout struct {
	FaderBase    uint8 `yaml:"fader_base"`
	ExtFaderBase uint8 `yaml:"ext_fader_base"`
	SelectOffset uint8 `yaml:"select_offset"`
}

type idRange struct {
	cat  Category
	base int
}

func (l Layout) ranges() []idRange {
	mute := int(l.SelectOffset) + muteGap
	return []idRange{
		{Fader, int(l.FaderBase)},
		{Select, int(l.FaderBase) + int(l.SelectOffset)},
		{Mute, int(l.FaderBase) + mute},
		{ExtFader, int(l.ExtFaderBase)},
		{ExtMute, int(l.ExtFaderBase) + mute},
	}
}

// Validate checks that all five ranges fit in the 7-bit id space and do not
// overlap.
func (l Layout) Validate() error {
	rs := l.ranges()
	for i, a := range rs {
		if a.base+Lanes-1 > 127 {
			return fmt.Errorf("layout: %s ids %d-%d exceed 127", a.cat, a.base, a.base+Lanes-1)
		}
		for _, b := range rs[i+1:] {
			if a.base < b.base+Lanes && b.base < a.base+Lanes {
				return fmt.Errorf("layout: %s ids %d-%d overlap %s ids %d-%d",
					a.cat, a.base, a.base+Lanes-1, b.cat, b.base, b.base+Lanes-1)
			}
		}
	}
	return nil
}

// Classify maps a control id to its category and lane. Ids outside every
// range are Unrecognized with lane -1.
func (l Layout) Classify(id uint8) (Category, int) {
	for _, r := range l.ranges() {
		if off := int(id) - r.base; off >= 0 && off < Lanes {
			return r.cat, off
		}
	}
	return Unrecognized, -1
}

// ID returns the control id of the given category and lane.
func (l Layout) ID(cat Category, lane int) uint8 {
	for _, r := range l.ranges() {
		if r.cat == cat {
			return uint8(r.base + lane)
		}
	}
	panic("layout: no ids for category " + cat.String())
}

// LightIDs returns every select and mute id of both banks; these are the
// controls with LEDs. The extension bank's selects are included so their
// LEDs can be cleared even though their presses are ignored.
func (l Layout) LightIDs() []uint8 {
	ids := make([]uint8, 0, 4*Lanes)
	for lane := 0; lane < Lanes; lane++ {
		ids = append(ids, l.ID(Select, lane))
	}
	for lane := 0; lane < Lanes; lane++ {
		ids = append(ids, l.ExtFaderBase+l.SelectOffset+uint8(lane))
	}
	for _, cat := range []Category{Mute, ExtMute} {
		for lane := 0; lane < Lanes; lane++ {
			ids = append(ids, l.ID(cat, lane))
		}
	}
	return ids
}
