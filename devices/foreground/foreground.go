// Package foreground finds the executable behind the focused X11 window.
package foreground

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// DefaultProcRoot is where process information is read from.
const DefaultProcRoot = "/proc"

// Query answers which process owns the active window. It satisfies
// engine.ForegroundQuery.
type Query struct {
	activePID func() (int, error)
	procRoot  string
}

// Connect opens a connection to the X server named by $DISPLAY.
func Connect() (*Query, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	return &Query{
		activePID: func() (int, error) {
			win, err := ewmh.ActiveWindowGet(xu)
			if err != nil {
				return 0, fmt.Errorf("get active window: %w", err)
			}
			if win == 0 {
				return 0, errors.New("no active window")
			}
			pid, err := ewmh.WmPidGet(xu, win)
			if err != nil {
				return 0, fmt.Errorf("get pid of window %d: %w", win, err)
			}
			return int(pid), nil
		},
		procRoot: DefaultProcRoot,
	}, nil
}

// ActiveProcess returns the executable name of the foreground process.
func (q *Query) ActiveProcess() (string, error) {
	pid, err := q.activePID()
	if err != nil {
		return "", err
	}
	return ExecutableName(q.procRoot, pid)
}

// ExecutableName returns the base name of a process's executable, falling back
// to its command name when the executable link cannot be read (e.g. for
// processes of other users).
func ExecutableName(procRoot string, pid int) (string, error) {
	dir := filepath.Join(procRoot, strconv.Itoa(pid))
	if exe, err := os.Readlink(filepath.Join(dir, "exe")); err == nil {
		return filepath.Base(strings.TrimSuffix(exe, " (deleted)")), nil
	}
	comm, err := os.ReadFile(filepath.Join(dir, "comm"))
	if err != nil {
		return "", fmt.Errorf("executable of pid %d: %w", pid, err)
	}
	return strings.TrimSpace(string(comm)), nil
}
