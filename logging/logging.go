package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

type LogCategory string

const (
	META     LogCategory = "meta" // For logs about logging
	MIDI_IN  LogCategory = "midi_in"
	MIDI_OUT LogCategory = "midi_out"
	OSC_IN   LogCategory = "osc_in"
	OSC_OUT  LogCategory = "osc_out"
	ENGINE   LogCategory = "engine"  // Binding engine decisions (bind, unbind, mute, volume)
	SESSION  LogCategory = "session" // Audio session and foreground process lookups
	APP      LogCategory = "app"     // Process lifecycle
)

// Categories lists every known category in a stable order.
var Categories = []LogCategory{META, MIDI_IN, MIDI_OUT, OSC_IN, OSC_OUT, ENGINE, SESSION, APP}

// ParseCategory maps a category name back to its LogCategory.
func ParseCategory(s string) (LogCategory, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Internal state for loggers per category
var (
	mu               = new(sync.RWMutex)
	loggers          = map[LogCategory]*slog.Logger{}
	categoryLvls     = map[LogCategory]*slog.LevelVar{}
	defaultLogLevels = map[LogCategory]slog.Level{
		META:     slog.LevelInfo,
		MIDI_IN:  slog.LevelWarn,
		MIDI_OUT: slog.LevelWarn,
		OSC_IN:   slog.LevelWarn,
		OSC_OUT:  slog.LevelWarn,
		ENGINE:   slog.LevelInfo,
		SESSION:  slog.LevelInfo,
		APP:      slog.LevelInfo,
	}
)

// levelVar returns the LevelVar for the category, creating it at the default level.
//
// mu must be held for writing.
func levelVar(category LogCategory) *slog.LevelVar {
	lvlVar, ok := categoryLvls[category]
	if !ok {
		lvlVar = new(slog.LevelVar)
		lvlVar.Set(defaultLogLevels[category])
		categoryLvls[category] = lvlVar
	}
	return lvlVar
}

// Get returns a slog.Logger that always has the "category" attribute set.
// Each category gets its own logger instance.
func Get(category LogCategory) *slog.Logger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	// Double-check after locking
	if l, ok := loggers[category]; ok {
		return l
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelVar(category),
	})
	catLogger := slog.New(handler).With("category", category)
	loggers[category] = catLogger
	return catLogger
}

// SetCategoryLevel changes the level of a category. Loggers already handed out
// by Get pick up the change immediately.
func SetCategoryLevel(category LogCategory, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	levelVar(category).Set(level)
}

// CategoryLevel reports the current level of a category.
func CategoryLevel(category LogCategory) slog.Level {
	mu.Lock()
	defer mu.Unlock()
	return levelVar(category).Level()
}

// Dispatcher is a custom osc.Dispatcher, implementing the osc.Dispatcher interface
type Dispatcher struct{}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch dispatches OSC packets. Implements the Dispatcher interface.
func (s *Dispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	default:
		return

	case *osc.Message:
		HandleOSCSetCategoryLevel(p)

	case *osc.Bundle:
		for _, m := range p.Messages {
			HandleOSCSetCategoryLevel(m)
		}
	}
}

// LevelServer listens for OSC messages that adjust log levels at runtime.
type LevelServer struct {
	Server *osc.Server
}

// NewLevelServer returns a LevelServer bound to addr ("host:port").
func NewLevelServer(addr string) *LevelServer {
	return &LevelServer{
		Server: &osc.Server{
			Addr:       addr,
			Dispatcher: NewDispatcher(),
		},
	}
}

// Run blocks serving OSC requests until the listener fails.
func (o *LevelServer) Run() error {
	Get(META).Info("Starting log level OSC server", "addr", o.Server.Addr)
	return o.Server.ListenAndServe()
}

func splitOscPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// OSC handler for runtime config
//
// Routes:
// /meta/logging/{category}/level as int where -4 is Debug, 0 is Info, 4 is Warn, 8 is Error
func HandleOSCSetCategoryLevel(msg *osc.Message) {
	pathSegs := splitOscPath(msg.Address)

	if len(pathSegs) != 4 || pathSegs[0] != "meta" || pathSegs[1] != "logging" || pathSegs[3] != "level" {
		return
	}
	cat, ok := ParseCategory(pathSegs[2])
	if !ok {
		Get(META).Info("Unrecognized log category in OSC message", "category", pathSegs[2])
		return
	}
	if len(msg.Arguments) == 0 {
		Get(META).Error("Missing level in OSC message", "address", msg.Address)
		return
	}
	level, ok := msg.Arguments[0].(int32)
	if !ok {
		Get(META).Error("Invalid level type in OSC message", "expected", "int32", "got", fmt.Sprintf("%T", msg.Arguments[0]))
		return
	}
	Get(META).Info("Setting category level via OSC",
		"category", cat,
		"level", level)
	SetCategoryLevel(cat, slog.Level(level))
}
