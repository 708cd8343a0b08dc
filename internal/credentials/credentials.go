// Package credentials resolves the password used to log in to monitoring
// instances.
package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// EnvPassword is the environment variable read by Env.
const EnvPassword = "WTC_PASSWORD"

// ErrNoPassword is returned when no source produced a password.
var ErrNoPassword = errors.New("no password available")

// Source supplies the password for a user.
type Source interface {
	Password(ctx context.Context, user string) (string, error)
}

// Static returns a fixed password, usually from --password or the config file.
type Static string

// Password returns the static password.
func (s Static) Password(ctx context.Context, user string) (string, error) {
	return string(s), nil
}

// Env reads the password from an environment variable.
type Env struct {
	Name string // defaults to EnvPassword
}

// Password returns the variable's value, or an empty string when unset.
func (e Env) Password(ctx context.Context, user string) (string, error) {
	name := e.Name
	if name == "" {
		name = EnvPassword
	}
	return os.Getenv(name), nil
}

// Prompt asks for the password interactively. On a terminal the input is
// not echoed; otherwise one line is read from In.
type Prompt struct {
	In  *os.File
	Out io.Writer
}

// NewPrompt returns a prompt on stdin, writing the question to stderr.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stderr}
}

// Password prompts for the password of user.
func (p *Prompt) Password(ctx context.Context, user string) (string, error) {
	fmt.Fprintf(p.Out, "enter password for %s:", user)

	fd := int(p.In.Fd())
	if term.IsTerminal(fd) {
		return p.readTerminal(ctx, fd)
	}

	// Fallback for non-terminal input (e.g., piped input)
	reader := bufio.NewReader(p.In)
	password, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && password != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(password, "\r\n"), nil
}

// readTerminal reads without echo. On cancellation the terminal state is
// restored and the pending read is abandoned.
func (p *Prompt) readTerminal(ctx context.Context, fd int) (string, error) {
	state, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	type result struct {
		password []byte
		err      error
	}
	done := make(chan result, 1)
	go func() {
		pw, err := term.ReadPassword(fd)
		done <- result{pw, err}
	}()

	select {
	case <-ctx.Done():
		term.Restore(fd, state)
		fmt.Fprintln(p.Out)
		return "", ctx.Err()
	case r := <-done:
		fmt.Fprintln(p.Out)
		if r.err != nil {
			return "", fmt.Errorf("read password: %w", r.err)
		}
		return string(r.password), nil
	}
}

// Chain tries each source in order and returns the first non-empty
// password. The last source is final: its answer is used even when empty,
// so an empty password entered at the prompt is accepted.
type Chain []Source

// Password implements Source.
func (c Chain) Password(ctx context.Context, user string) (string, error) {
	if len(c) == 0 {
		return "", ErrNoPassword
	}
	for i, src := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pw, err := src.Password(ctx, user)
		if err != nil {
			return "", err
		}
		if pw != "" || i == len(c)-1 {
			return pw, nil
		}
	}
	return "", ErrNoPassword
}
