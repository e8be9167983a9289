package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by EnterRaw when the input is not a terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// Fallback size used when the output size cannot be read.
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// Terminal wraps a terminal's input and output streams.
type Terminal struct {
	in  *os.File
	out io.Writer

	mu       sync.Mutex
	oldState *term.State
}

// NewTerminal creates a Terminal reading keys from in and drawing to out.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// EnterRaw switches the input to raw mode.
func (t *Terminal) EnterRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return nil
	}
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

// ExitRaw restores the mode saved by EnterRaw.
func (t *Terminal) ExitRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState == nil {
		return nil
	}
	err := term.Restore(int(t.in.Fd()), t.oldState)
	t.oldState = nil
	return err
}

// IsRaw reports whether the input is in raw mode.
func (t *Terminal) IsRaw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.oldState != nil
}

// Size returns the output size, or 80x24 when it cannot be read.
func (t *Terminal) Size() (width, height int) {
	if f, ok := t.out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return fallbackWidth, fallbackHeight
}

// Read reads raw key bytes from the input.
func (t *Terminal) Read(p []byte) (int, error) {
	return t.in.Read(p)
}

const (
	ClearScreen = "\033[2J"
	ClearLine   = "\033[K"
	CursorHome  = "\033[H"
	CursorHide  = "\033[?25l"
	CursorShow  = "\033[?25h"

	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	FgRed         = "\033[31m"
	FgGreen       = "\033[32m"
	FgYellow      = "\033[33m"
	FgCyan        = "\033[36m"
	FgBrightBlack = "\033[90m"
	FgBrightGreen = "\033[92m"

	Bell = "\a"
)
