// Package report surfaces the outcome of a pass to the person who ran it.
package report

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
)

// Summary is the outcome of one pass over one document.
type Summary struct {
	RunID  string
	Action string
	File   string
	Count  int
	// Detail completes "N text items ..." (e.g. "marked red", "changed").
	Detail   string
	Failures []error
	DryRun   bool
	// Notes are extra lines, such as alerts raised by a script.
	Notes []string
}

func (s Summary) Message() string {
	if s.DryRun {
		return fmt.Sprintf("%d text items would be %s.", s.Count, s.Detail)
	}
	return fmt.Sprintf("%d text items %s.", s.Count, s.Detail)
}

type Reporter interface {
	Report(s Summary) error
}

var constructors = map[string]func(out io.Writer) Reporter{
	"terminal": func(out io.Writer) Reporter { return NewTerminal(out) },
	"dialog":   func(io.Writer) Reporter { return Dialog{} },
	"notify":   func(io.Writer) Reporter { return Notify{} },
	"log":      func(io.Writer) Reporter { return Log{} },
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func Known(name string) bool {
	_, ok := constructors[name]
	return ok
}

// New returns the named reporter. out is used by the terminal reporter
// and defaults to stdout.
func New(name string, out io.Writer) (Reporter, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown report %q", name)
	}
	if out == nil {
		out = os.Stdout
	}
	return ctor(out), nil
}

// Log writes summaries to the standard logger.
type Log struct{}

func (Log) Report(s Summary) error {
	log.Printf("%s %s: %s (run %s)", s.Action, s.File, s.Message(), s.RunID)
	for _, n := range s.Notes {
		log.Printf("%s %s: %s", s.Action, s.File, n)
	}
	for _, f := range s.Failures {
		log.Printf("%s %s: failed: %v", s.Action, s.File, f)
	}
	return nil
}
