// Package terminal renders the weather screen on a text terminal.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/geoweather/backend/internal/domain"
)

const dismissLabel = "Dismiss"

// Display writes labels, notifications and dialogs to out.
// When dismiss is non-nil, dialogs wait for a line on it before returning.
type Display struct {
	mu      sync.Mutex
	out     io.Writer
	dismiss *bufio.Reader
	last    domain.DisplayState
}

// NewDisplay creates a terminal display; dismiss may be nil for non-interactive use
func NewDisplay(out io.Writer, dismiss io.Reader) *Display {
	d := &Display{out: out}
	if dismiss != nil {
		d.dismiss = bufio.NewReader(dismiss)
	}
	return d
}

// Render prints every label of the state
func (d *Display) Render(state domain.DisplayState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = state

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", state.Country, state.DateTime)
	fmt.Fprintf(&b, "%s\n", state.Status)
	fmt.Fprintf(&b, "%s\n", state.Temperature)
	fmt.Fprintf(&b, "%s   %s\n", state.MinTemperature, state.MaxTemperature)
	fmt.Fprintf(&b, "%s\n%s\n", state.Sunrise, state.Sunset)
	fmt.Fprintf(&b, "%s\n%s\n%s\n", state.WindSpeed, state.Humidity, state.Pressure)
	if state.MoreInfoEnabled {
		fmt.Fprintf(&b, "[%s]\n", domain.MoreInfoTitle)
	}
	_, _ = io.WriteString(d.out, b.String())
}

// Notify prints a one-line transient message
func (d *Display) Notify(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, "» %s\n", message)
}

// ShowDialog prints a titled box with a Dismiss action
func (d *Display) ShowDialog(title, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	lines := strings.Split(message, "\n")
	width := len(title)
	for _, l := range lines {
		width = max(width, len(l))
	}
	rule := strings.Repeat("-", width+4)

	var b strings.Builder
	fmt.Fprintf(&b, "+%s+\n", rule)
	fmt.Fprintf(&b, "|  %-*s  |\n", width, title)
	fmt.Fprintf(&b, "+%s+\n", rule)
	for _, l := range lines {
		fmt.Fprintf(&b, "|  %-*s  |\n", width, l)
	}
	fmt.Fprintf(&b, "+%s+\n", rule)
	if d.dismiss != nil {
		fmt.Fprintf(&b, "[%s: press Enter]\n", dismissLabel)
	}
	_, _ = io.WriteString(d.out, b.String())

	if d.dismiss != nil {
		_, _ = d.dismiss.ReadString('\n')
	}
}

// Last returns the most recently rendered state
func (d *Display) Last() domain.DisplayState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
