package engine

// extensionChannel is an extension lane, permanently wired to one strip of the
// virtual mixer.
type extensionChannel struct {
	lane    int
	faderID uint8
	muteID  uint8

	endpoint ChannelEndpoint
	muted    bool

	lights LightDriver
}

func newExtensionChannel(lane int, layout Layout, ep ChannelEndpoint, lights LightDriver) *extensionChannel {
	return &extensionChannel{
		lane:     lane,
		faderID:  layout.ID(ExtFader, lane),
		muteID:   layout.ID(ExtMute, lane),
		endpoint: ep,
		lights:   lights,
	}
}

func (c *extensionChannel) setGain(v uint8) {
	db := FaderToGain(v)
	if err := c.endpoint.SetGain(db); err != nil {
		engineLog.Warn("Strip gain command failed", "lane", c.lane, "err", err)
		return
	}
	engineLog.Debug("Set strip gain", "lane", c.lane, "gain_db", db)
}

// toggleMute flips the strip's mute starting from what the mixer reports
// rather than the cached flag.
func (c *extensionChannel) toggleMute() {
	current, err := c.endpoint.Mute()
	if err != nil {
		engineLog.Warn("Strip mute query failed", "lane", c.lane, "err", err)
		return
	}
	want := !current
	if err := c.endpoint.SetMute(want); err != nil {
		engineLog.Warn("Strip mute command failed", "lane", c.lane, "err", err)
		return
	}
	c.mirror(want)
	engineLog.Debug("Toggled strip mute", "lane", c.lane, "muted", want)
}

// sync reads the strip's mute state and mirrors it onto the LED.
func (c *extensionChannel) sync() error {
	muted, err := c.endpoint.Mute()
	if err != nil {
		return err
	}
	c.muted = muted
	if muted {
		return c.lights.SetLight(c.muteID, true)
	}
	return nil
}

func (c *extensionChannel) mirror(muted bool) {
	c.muted = muted
	if err := c.lights.SetLight(c.muteID, muted); err != nil {
		engineLog.Warn("Failed to update strip mute light", "lane", c.lane, "err", err)
	}
}
