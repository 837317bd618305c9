// Package config loads the YAML configuration of nk2mix.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Porma/nk2-volume-controller/devices"
	"github.com/Porma/nk2-volume-controller/devices/nanokontrol"
	"github.com/Porma/nk2-volume-controller/devices/vmixer"
	"github.com/Porma/nk2-volume-controller/engine"
	"github.com/Porma/nk2-volume-controller/logging"
)

type MIDIConfig struct {
	// In and Out are matched as substrings of the port names.
	In        string `yaml:"in"`
	Out       string `yaml:"out"`
	Channel   uint8  `yaml:"channel"`
	QueueSize int    `yaml:"queue_size"`
}

type PulseConfig struct {
	// Server is empty for the default server.
	Server  string `yaml:"server"`
	AppName string `yaml:"app_name"`
}

type MixerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Listen is the feedback address ("host:port"); empty disables feedback.
	Listen   string `yaml:"listen"`
	GainAddr string `yaml:"gain_addr"`
	MuteAddr string `yaml:"mute_addr"`
	// Strips are the mixer strip indices of the extension lanes, in lane order.
	Strips []int `yaml:"strips"`
}

type LoggingConfig struct {
	// Listen is the address of the OSC log level server; empty disables it.
	Listen string            `yaml:"listen"`
	Levels map[string]string `yaml:"levels"`
}

type EngineConfig struct {
	IdlePoll time.Duration `yaml:"idle_poll"`
}

type Config struct {
	MIDI    MIDIConfig    `yaml:"midi"`
	Layout  engine.Layout `yaml:"layout"`
	Pulse   PulseConfig   `yaml:"pulse"`
	Mixer   MixerConfig   `yaml:"mixer"`
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
}

// Default returns the configuration for a factory nanoKONTROL2 driving a
// mixer on the local host.
func Default() *Config {
	return &Config{
		MIDI: MIDIConfig{
			In:        nanokontrol.PortName,
			Out:       nanokontrol.PortName,
			Channel:   nanokontrol.Channel,
			QueueSize: devices.DefaultQueueSize,
		},
		Layout: nanokontrol.Layout,
		Pulse: PulseConfig{
			AppName: "nk2mix",
		},
		Mixer: MixerConfig{
			Host:     "127.0.0.1",
			Port:     8000,
			GainAddr: vmixer.DefaultGainAddr,
			MuteAddr: vmixer.DefaultMuteAddr,
			Strips:   []int{0, 1, 2, 3},
		},
		Engine: EngineConfig{
			IdlePoll: engine.DefaultIdlePoll,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.MIDI.In == "" || c.MIDI.Out == "" {
		errs = append(errs, errors.New("midi: in and out ports are required"))
	}
	if c.MIDI.Channel > 15 {
		errs = append(errs, fmt.Errorf("midi: channel %d out of range 0-15", c.MIDI.Channel))
	}
	if c.MIDI.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("midi: queue_size must be positive, got %d", c.MIDI.QueueSize))
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Mixer.Port < 1 || c.Mixer.Port > 65535 {
		errs = append(errs, fmt.Errorf("mixer: port %d out of range", c.Mixer.Port))
	}
	if err := vmixer.ValidateTemplate(c.Mixer.GainAddr); err != nil {
		errs = append(errs, fmt.Errorf("mixer: gain_addr: %w", err))
	}
	if err := vmixer.ValidateTemplate(c.Mixer.MuteAddr); err != nil {
		errs = append(errs, fmt.Errorf("mixer: mute_addr: %w", err))
	}
	if len(c.Mixer.Strips) != engine.Lanes {
		errs = append(errs, fmt.Errorf("mixer: need %d strips, got %d", engine.Lanes, len(c.Mixer.Strips)))
	}
	for _, s := range c.Mixer.Strips {
		if s < 0 {
			errs = append(errs, fmt.Errorf("mixer: negative strip index %d", s))
		}
	}
	if _, err := c.Logging.levels(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	return errors.Join(errs...)
}

func (l LoggingConfig) levels() (map[logging.LogCategory]slog.Level, error) {
	out := make(map[logging.LogCategory]slog.Level, len(l.Levels))
	for name, text := range l.Levels {
		cat, ok := logging.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(text)); err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		out[cat] = lvl
	}
	return out, nil
}

// Apply sets the configured category levels.
func (l LoggingConfig) Apply() error {
	lvls, err := l.levels()
	if err != nil {
		return err
	}
	for cat, lvl := range lvls {
		logging.SetCategoryLevel(cat, lvl)
	}
	return nil
}

// VMixer returns the address templates for vmixer.New.
func (m MixerConfig) VMixer() vmixer.Config {
	return vmixer.Config{GainAddr: m.GainAddr, MuteAddr: m.MuteAddr}
}

// MIDIOptions returns the device options for the configured channel and queue.
func (m MIDIConfig) MIDIOptions() []devices.Option {
	return []devices.Option{devices.WithChannel(m.Channel), devices.WithQueueSize(m.QueueSize)}
}
