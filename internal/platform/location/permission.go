package location

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// FixedPrompter answers every permission request the same way
type FixedPrompter struct {
	Granted bool
}

func (p FixedPrompter) ShouldShowRationale() bool {
	return false
}

func (p FixedPrompter) RequestLocationPermission(context.Context) (bool, error) {
	return p.Granted, nil
}

// TerminalPrompter asks for the permission on a terminal.
// Once the user has declined, later requests show the rationale instead of asking again.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer

	mu       sync.Mutex
	declined bool
}

// NewTerminalPrompter creates a prompter reading answers from in
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompter) ShouldShowRationale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.declined
}

// RequestLocationPermission asks a yes/no question; anything but y/yes denies.
// The answer is read synchronously; ctx is only checked before asking.
func (p *TerminalPrompter) RequestLocationPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprint(p.out, "Allow this app to access your location? [y/N]: "); err != nil {
		return false, fmt.Errorf("permission: failed to write prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("permission: failed to read answer: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	granted := answer == "y" || answer == "yes"

	p.mu.Lock()
	p.declined = !granted
	p.mu.Unlock()

	return granted, nil
}
