// Package prompt reads secrets from the user: masked with confirmation on a
// terminal, or the first line of stdin when input is piped.
package prompt

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/term"

	pmerrors "github.com/systmms/passmng/internal/errors"
	"github.com/systmms/passmng/internal/secure"
)

// ErrMismatch is returned when the confirmation differs from the first entry.
var ErrMismatch = errors.New("entries do not match")

// ErrNoInput is returned when piped stdin is empty.
var ErrNoInput = errors.New("no input")

type fder interface {
	Fd() uintptr
}

// Prompter reads secrets from in and writes prompts to out.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	fd          int
	interactive bool

	readPassword func(fd int) ([]byte, error)
}

// New returns a Prompter. Input is masked only when in is a terminal and
// nonInteractive is false.
func New(in io.Reader, out io.Writer, nonInteractive bool) *Prompter {
	p := &Prompter{
		in:           in,
		out:          out,
		readPassword: term.ReadPassword,
	}
	if f, ok := in.(fder); ok && !nonInteractive {
		p.fd = int(f.Fd())
		p.interactive = term.IsTerminal(p.fd)
	}
	return p
}

// Interactive reports whether the prompter reads from a terminal.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// ReadSecret reads one secret for key. The returned buffer owns the only
// copy of the plaintext.
func (p *Prompter) ReadSecret(key string) (*secure.Buffer, error) {
	if !p.interactive {
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}
		return secure.Seal(line), nil
	}

	first, err := p.masked(fmt.Sprintf("Enter password for %s: ", key))
	if err != nil {
		return nil, err
	}
	second, err := p.masked(fmt.Sprintf("Retype password for %s: ", key))
	if err != nil {
		wipe(first)
		return nil, err
	}
	defer wipe(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		wipe(first)
		return nil, pmerrors.UserError{
			Message:    "The entered passwords do not match",
			Suggestion: "Run the command again and type the same password twice",
			Err:        ErrMismatch,
		}
	}
	return secure.Seal(first), nil
}

func (p *Prompter) masked(label string) ([]byte, error) {
	fmt.Fprint(p.out, label)
	secret, err := p.readPassword(p.fd)
	fmt.Fprintln(p.out) // newline after hidden input
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read password: %v", pmerrors.ErrIO, err)
	}
	return secret, nil
}

// readLine returns the first line of in without its line ending.
func (p *Prompter) readLine() ([]byte, error) {
	line, err := bufio.NewReader(p.in).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to read stdin: %v", pmerrors.ErrIO, err)
	}
	if errors.Is(err, io.EOF) && len(line) == 0 {
		return nil, pmerrors.UserError{
			Message:    "No secret provided on stdin",
			Suggestion: "Pipe the secret in, e.g. echo 'hunter2' | passmng insert <key>",
			Err:        ErrNoInput,
		}
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
