package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	ColorAccent  = lipgloss.Color("#33A1FF")
	ColorSuccess = lipgloss.Color("#22C55E")
	ColorDanger  = lipgloss.Color("#FF5555")
	ColorMuted   = lipgloss.Color("#6B7280")
)

// Terminal prints a styled summary line, colors only when out is a
// terminal.
type Terminal struct {
	out io.Writer

	file    lipgloss.Style
	count   lipgloss.Style
	failure lipgloss.Style
	note    lipgloss.Style
}

func NewTerminal(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:     out,
		file:    r.NewStyle().Foreground(ColorAccent).Bold(true),
		count:   r.NewStyle().Foreground(ColorSuccess),
		failure: r.NewStyle().Foreground(ColorDanger),
		note:    r.NewStyle().Foreground(ColorMuted),
	}
}

func (t *Terminal) Report(s Summary) error {
	count := t.count
	if len(s.Failures) > 0 {
		count = t.failure
	}

	line := count.Render(s.Message())
	if s.File != "" {
		line = t.file.Render(s.File) + " " + line
	}
	if _, err := fmt.Fprintln(t.out, line); err != nil {
		return err
	}

	for _, n := range s.Notes {
		if _, err := fmt.Fprintln(t.out, "  "+t.note.Render(n)); err != nil {
			return err
		}
	}
	for _, f := range s.Failures {
		if _, err := fmt.Fprintln(t.out, "  "+t.failure.Render("✗ "+f.Error())); err != nil {
			return err
		}
	}
	return nil
}
