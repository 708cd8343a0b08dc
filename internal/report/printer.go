package report

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/good-yellow-bee/wtc/internal/models"
)

const (
	separator  = " | "
	timeLayout = "2006-01-02 15:04:05"
	urlPrefix  = "   `-"
)

// Format selects how the printer renders notifications.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// PrinterConfig controls which notifications are printed and how.
type PrinterConfig struct {
	Filter      *regexp.Regexp
	Limit       int
	DisableURLs bool
	Format      Format

	// Renderer decides the color profile. Defaults to one detected from the
	// output writer.
	Renderer *lipgloss.Renderer
}

// Printer writes notification summaries.
type Printer struct {
	w      io.Writer
	config PrinterConfig

	states map[models.State]lipgloss.Style
	url    lipgloss.Style
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, config PrinterConfig) *Printer {
	r := config.Renderer
	if r == nil {
		r = lipgloss.NewRenderer(w)
	}
	if config.Format == "" {
		config.Format = FormatText
	}

	states := make(map[models.State]lipgloss.Style, len(stateColors))
	for code, color := range stateColors {
		states[code] = r.NewStyle().Foreground(color)
	}

	return &Printer{
		w:      w,
		config: config,
		states: states,
		url:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	}
}

// Print selects the notifications to show and writes them. It returns the
// number of notifications printed.
func (p *Printer) Print(notifs []*models.Notification) (int, error) {
	selected := Select(notifs, p.config.Filter, p.config.Limit)

	if p.config.Format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(selected); err != nil {
			return 0, fmt.Errorf("failed to encode notifications: %w", err)
		}
		return len(selected), nil
	}

	for i, n := range selected {
		if _, err := fmt.Fprintln(p.w, p.Line(i+1, n)); err != nil {
			return i, err
		}
		if !p.config.DisableURLs {
			if _, err := fmt.Fprintln(p.w, urlPrefix+p.url.Render(n.URL)); err != nil {
				return i, err
			}
		}
	}
	return len(selected), nil
}

// Line renders the summary line of the seq-th printed notification.
func (p *Printer) Line(seq int, n *models.Notification) string {
	return strings.Join([]string{
		fmt.Sprintf("%02d", seq),
		n.Time().Format(timeLayout),
		p.State(n.State),
		n.HostName,
		n.ServiceDisplayName,
	}, separator)
}

// State renders a state code as a colored token. Unknown codes are printed
// as-is without color.
func (p *Printer) State(s models.State) string {
	label, ok := StateLabel(s)
	if !ok {
		return label
	}
	return p.states[s].Render(label)
}
