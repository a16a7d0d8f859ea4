// Package termguard scopes exclusive terminal control: raw mode and the
// alternate screen buffer are entered on construction and restored on
// release, on every exit path including a panic. No other component may
// write escape sequences to the terminal while a Guard is held.
package termguard

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
)

// Guard owns the terminal for the lifetime of a TUI session.
type Guard struct {
	fd       int
	oldState *term.State
	out      *os.File
	active   bool
}

// Acquire enters raw mode and the alternate screen on out (normally
// os.Stdout). Returns an error if out is not a terminal or raw mode
// cannot be entered.
func Acquire(out *os.File) (*Guard, error) {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("termguard: fd %d is not a terminal", fd)
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("termguard: enter raw mode: %w", err)
	}
	fmt.Fprint(out, enterAltScreen+hideCursor)
	return &Guard{fd: fd, oldState: oldState, out: out, active: true}, nil
}

// Release restores the terminal to its pre-Guard state. Safe to call
// more than once; only the first call has effect. Callers should defer
// Release immediately after a successful Acquire so it runs on every
// return path, including a recovered panic.
func (g *Guard) Release() {
	if g == nil || !g.active {
		return
	}
	g.active = false
	fmt.Fprint(g.out, showCursor+exitAltScreen)
	term.Restore(g.fd, g.oldState)
}

// Size returns the current terminal width and height in columns/rows.
func (g *Guard) Size() (width, height int, err error) {
	return term.GetSize(g.fd)
}
