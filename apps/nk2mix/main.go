// Command nk2mix drives per-application volumes and a virtual mixer from a
// Korg nanoKONTROL2.
//
// Press a solo button to bind the application in the foreground to that
// strip's fader and mute button; press it again to release the strip. The
// last four strips always control the configured mixer strips.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hypebeast/go-osc/osc"
	"gitlab.com/gomidi/midi/v2"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/Porma/nk2-volume-controller/config"
	"github.com/Porma/nk2-volume-controller/devices"
	"github.com/Porma/nk2-volume-controller/devices/foreground"
	"github.com/Porma/nk2-volume-controller/devices/pulse"
	"github.com/Porma/nk2-volume-controller/devices/vmixer"
	"github.com/Porma/nk2-volume-controller/engine"
	"github.com/Porma/nk2-volume-controller/logging"
)

var appLog = logging.Get(logging.APP)

func main() {
	configPath := flag.String("config", "nk2mix.yaml", "path to the YAML configuration")
	flag.Parse()

	if err := run(*configPath); err != nil {
		appLog.Error("nk2mix failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Logging.Apply(); err != nil {
		return err
	}
	if cfg.Logging.Listen != "" {
		go func() {
			if err := logging.NewLevelServer(cfg.Logging.Listen).Run(); err != nil {
				appLog.Warn("Log level server stopped", "err", err)
			}
		}()
	}

	defer midi.CloseDriver()
	in, err := midi.FindInPort(cfg.MIDI.In)
	if err != nil {
		return fmt.Errorf("find MIDI input %q: %w\ninputs:\n%s", cfg.MIDI.In, err, midi.GetInPorts())
	}
	out, err := midi.FindOutPort(cfg.MIDI.Out)
	if err != nil {
		return fmt.Errorf("find MIDI output %q: %w\noutputs:\n%s", cfg.MIDI.Out, err, midi.GetOutPorts())
	}
	surface := devices.NewMidiDevice(in, out, cfg.MIDI.MIDIOptions()...)
	if err := surface.Open(); err != nil {
		return err
	}
	defer surface.Close()

	sessions, err := pulse.Dial(cfg.Pulse.Server, cfg.Pulse.AppName)
	if err != nil {
		return err
	}
	defer sessions.Close()

	fg, err := foreground.Connect()
	if err != nil {
		return err
	}

	client := osc.NewClient(cfg.Mixer.Host, cfg.Mixer.Port)
	mixer := vmixer.New(client, cfg.Mixer.VMixer())
	if cfg.Mixer.Listen != "" {
		conn, err := mixer.Listen(cfg.Mixer.Listen)
		if err != nil {
			return err
		}
		defer conn.Close()
	}
	var channels [engine.Lanes]engine.ChannelEndpoint
	for lane, index := range cfg.Mixer.Strips {
		channels[lane] = mixer.Strip(index)
	}

	eng, err := engine.New(engine.Options{
		Layout:     cfg.Layout,
		Sessions:   sessions,
		Foreground: fg,
		Lights:     surface,
		Channels:   channels,
		IdlePoll:   cfg.Engine.IdlePoll,
	})
	if err != nil {
		return err
	}
	if err := eng.ResetLights(); err != nil {
		return fmt.Errorf("reset surface lights: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		appLog.Info("Stopping", "signal", sig.String())
		eng.Stop()
	}()

	appLog.Info("Running",
		"midi_in", in.String(),
		"midi_out", out.String(),
		"mixer", fmt.Sprintf("%s:%d", cfg.Mixer.Host, cfg.Mixer.Port))
	eng.Run(surface)

	if n := surface.Dropped(); n > 0 {
		appLog.Warn("Surface events were dropped", "count", n)
	}
	return nil
}
