package tui

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/thruflo/sortviz/internal/sorting"
)

// Key represents a keyboard input.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyCtrlC
	KeyCtrlD
	KeyRune // Regular character
)

// KeyEvent represents a key press event.
type KeyEvent struct {
	Key  Key
	Rune rune // Only valid when Key == KeyRune
}

// KeyReader decodes key presses from a raw terminal.
type KeyReader struct {
	reader *bufio.Reader
}

// NewKeyReader creates a KeyReader from the given io.Reader.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{reader: bufio.NewReaderSize(r, 64)}
}

// ReadKey blocks until a key is pressed.
func (k *KeyReader) ReadKey() (KeyEvent, error) {
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}

	switch b {
	case 0x03:
		return KeyEvent{Key: KeyCtrlC}, nil
	case 0x04:
		return KeyEvent{Key: KeyCtrlD}, nil
	case '\r', '\n':
		return KeyEvent{Key: KeyEnter}, nil
	case 0x1B:
		return k.readEscape(), nil
	}

	switch {
	case b >= 0x20 && b < 0x7F:
		return KeyEvent{Key: KeyRune, Rune: rune(b)}, nil
	case b >= 0xC0:
		return k.readUTF8(b)
	default:
		return KeyEvent{Key: KeyUnknown}, nil
	}
}

// readEscape decodes arrow keys sent as CSI or SS3 sequences. A lone escape
// is reported as KeyEscape.
func (k *KeyReader) readEscape() KeyEvent {
	if k.reader.Buffered() == 0 {
		return KeyEvent{Key: KeyEscape}
	}
	prefix, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{Key: KeyEscape}
	}
	if prefix != '[' && prefix != 'O' {
		k.reader.UnreadByte()
		return KeyEvent{Key: KeyEscape}
	}

	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{Key: KeyEscape}
	}
	switch b {
	case 'A':
		return KeyEvent{Key: KeyUp}
	case 'B':
		return KeyEvent{Key: KeyDown}
	case 'C':
		return KeyEvent{Key: KeyRight}
	case 'D':
		return KeyEvent{Key: KeyLeft}
	}

	// Drain the rest of an unknown sequence.
	for next := b; k.reader.Buffered() > 0; {
		if (next >= 'A' && next <= 'Z') || next == '~' {
			break
		}
		next, _ = k.reader.ReadByte()
	}
	return KeyEvent{Key: KeyUnknown}
}

func (k *KeyReader) readUTF8(first byte) (KeyEvent, error) {
	var n int
	switch {
	case first&0xE0 == 0xC0:
		n = 2
	case first&0xF0 == 0xE0:
		n = 3
	case first&0xF8 == 0xF0:
		n = 4
	default:
		return KeyEvent{Key: KeyUnknown}, nil
	}

	buf := []byte{first}
	for len(buf) < n {
		b, err := k.reader.ReadByte()
		if err != nil {
			return KeyEvent{Key: KeyUnknown}, err
		}
		buf = append(buf, b)
	}

	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return KeyEvent{Key: KeyUnknown}, nil
	}
	return KeyEvent{Key: KeyRune, Rune: r}, nil
}

// Action is something the user asked the visualizer to do.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionStop
	ActionReset
	ActionMute
	ActionNext
	ActionPrev
	ActionSelect
	ActionQuit
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionReset:
		return "reset"
	case ActionMute:
		return "mute"
	case ActionNext:
		return "next"
	case ActionPrev:
		return "prev"
	case ActionSelect:
		return "select"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is an action with its argument.
type Command struct {
	Action    Action
	Algorithm sorting.Algorithm // Only set for ActionSelect
}

// ParseCommand maps a key press to a command. Digits select algorithms in
// menu order.
func ParseCommand(ev KeyEvent) Command {
	switch ev.Key {
	case KeyEscape, KeyCtrlC, KeyCtrlD:
		return Command{Action: ActionQuit}
	case KeyRight, KeyDown:
		return Command{Action: ActionNext}
	case KeyLeft, KeyUp:
		return Command{Action: ActionPrev}
	case KeyRune:
	default:
		return Command{}
	}

	switch ev.Rune {
	case 's', 'S':
		return Command{Action: ActionStart}
	case 'x', 'X':
		return Command{Action: ActionStop}
	case 'r', 'R':
		return Command{Action: ActionReset}
	case 'm', 'M':
		return Command{Action: ActionMute}
	case 'q', 'Q':
		return Command{Action: ActionQuit}
	}

	if ev.Rune >= '1' && ev.Rune <= '9' {
		algs := sorting.Algorithms()
		if i := int(ev.Rune - '1'); i < len(algs) {
			return Command{Action: ActionSelect, Algorithm: algs[i]}
		}
	}
	return Command{}
}
