package render

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

const (
	ClearScreen    = "\033[2J"
	CursorHome     = "\033[H"
	CursorHide     = "\033[?25l"
	CursorShow     = "\033[?25h"
	AltScreenEnter = "\033[?1049h"
	AltScreenExit  = "\033[?1049l"
	resetStyle     = "\033[0m"
)

// Terminal switches the input tty in and out of raw mode.
type Terminal struct {
	fd    int
	saved unix.Termios
	raw   bool
}

func NewTerminal(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("reading terminal mode: %w", err)
	}
	return &Terminal{fd: fd, saved: *termios}, nil
}

// EnterRawMode disables echo, line buffering and signal keys. Reads
// return after at most 100ms so the input loop can notice shutdown.
func (t *Terminal) EnterRawMode() error {
	mode := t.saved
	mode.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	mode.Oflag &^= unix.OPOST
	mode.Cflag |= unix.CS8
	mode.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	mode.Cc[unix.VMIN] = 0
	mode.Cc[unix.VTIME] = 1
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &mode); err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	t.raw = true
	return nil
}

// RestoreMode puts back the mode saved by NewTerminal. It does nothing
// unless raw mode is active.
func (t *Terminal) RestoreMode() error {
	if !t.raw {
		return nil
	}
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.saved); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	t.raw = false
	return nil
}

// Size reports the dimensions of the terminal's own tty.
func (t *Terminal) Size() (width, height int, err error) {
	return winsize(t.fd)
}

// TerminalSize reports the dimensions of the tty behind stdout.
func TerminalSize() (width, height int, err error) {
	return winsize(int(os.Stdout.Fd()))
}

func winsize(fd int) (int, int, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

func EnterAltScreen(w io.Writer) {
	io.WriteString(w, AltScreenEnter+CursorHide+ClearScreen)
}

func ExitAltScreen(w io.Writer) {
	io.WriteString(w, CursorShow+AltScreenExit)
}
