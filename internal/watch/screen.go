package watch

import (
	"io"

	"github.com/muesli/termenv"
)

// Screen is cleared before each refresh.
type Screen interface {
	Clear()
}

// TermScreen clears a terminal with ANSI sequences.
type TermScreen struct {
	out *termenv.Output
}

// NewTermScreen returns a screen writing to w.
func NewTermScreen(w io.Writer) *TermScreen {
	return &TermScreen{out: termenv.NewOutput(w)}
}

// Clear erases the screen and moves the cursor home.
func (s *TermScreen) Clear() {
	s.out.ClearScreen()
}
