package ui

import (
	"os"

	"golang.org/x/term"
)

// Styled reports whether output written to f should carry color. f must be
// a terminal, NO_COLOR must be unset and TERM must not be "dumb".
func Styled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}

// NewTerminalReport returns a Report on f, styled when f is a color terminal.
func NewTerminalReport(f *os.File) *Report {
	return NewReport(f, Styled(f))
}
