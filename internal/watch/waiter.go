package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// ctrlC is what Ctrl+C produces while the terminal is in raw mode.
const ctrlC = 0x03

// ErrInterrupted is returned by a Waiter when the user pressed Ctrl+C.
var ErrInterrupted = errors.New("interrupted")

// Waiter blocks between two refreshes.
type Waiter interface {
	// Wait returns nil after timeout or on a keypress, whichever comes
	// first. A negative timeout waits for a key only. It returns
	// ErrInterrupted on Ctrl+C and ctx.Err() when ctx is done.
	Wait(ctx context.Context, timeout time.Duration) error
}

// KeyWaiter waits for a single key on a terminal. A background goroutine
// reads the input one byte at a time for the lifetime of the process.
type KeyWaiter struct {
	in  *os.File
	out io.Writer

	once sync.Once
	keys chan byte
}

// NewKeyWaiter creates a waiter reading keys from in and writing its prompt
// to out.
func NewKeyWaiter(in *os.File, out io.Writer) *KeyWaiter {
	return &KeyWaiter{
		in:   in,
		out:  out,
		keys: make(chan byte, 64),
	}
}

func (w *KeyWaiter) start() {
	go func() {
		defer close(w.keys)
		buf := make([]byte, 1)
		for {
			n, err := w.in.Read(buf)
			if n > 0 {
				w.keys <- buf[0]
			}
			if err != nil {
				return
			}
		}
	}()
}

// Wait implements Waiter.
func (w *KeyWaiter) Wait(ctx context.Context, timeout time.Duration) error {
	w.once.Do(w.start)
	w.drain()

	if timeout >= 0 {
		fmt.Fprintf(w.out, "Waiting for %ds, press any key to refresh now", int(timeout/time.Second))
	} else {
		fmt.Fprint(w.out, "Press any key to refresh")
	}
	defer fmt.Fprintln(w.out)

	fd := int(w.in.Fd())
	if term.IsTerminal(fd) {
		if state, err := term.MakeRaw(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}

	var expired <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	keys := w.keys
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-expired:
			return nil
		case b, ok := <-keys:
			if !ok {
				// Input closed, only the timer or ctx can end the wait.
				keys = nil
				continue
			}
			if b == ctrlC {
				return ErrInterrupted
			}
			return nil
		}
	}
}

// drain drops keys typed while the previous pass was running.
func (w *KeyWaiter) drain() {
	for {
		select {
		case _, ok := <-w.keys:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
