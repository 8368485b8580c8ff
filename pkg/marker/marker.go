// Package marker implements the text frame passes: marking frames whose
// content is duplicated among visible layers, marking frames from a fixed
// list of names, and literal substring replacement.
//
// The passes never reach into a live document. Callers hand in the frames
// and a mark function, which keeps every pass testable without a host.
package marker

import (
	"errors"
	"fmt"
)

// Element is one text-bearing node of a host document.
type Element interface {
	Content() string
	// Visible reports whether the layer owning the element is visible.
	Visible() bool
}

// Editable is an Element whose content can be rewritten.
type Editable interface {
	Element
	SetContent(s string) error
}

// MarkFunc applies the highlight color to one element.
type MarkFunc[E Element] func(e E, c Color) error

var (
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrEmptyPattern     = errors.New("empty search pattern")
	ErrInvalidPolicy    = errors.New("invalid failure policy")
)

// FailurePolicy decides what happens after a mark or edit fails.
type FailurePolicy int

const (
	// Continue keeps going and collects every failure.
	Continue FailurePolicy = iota
	// Abort stops at the first failure.
	Abort
)

func (p FailurePolicy) String() string {
	switch p {
	case Continue:
		return "continue"
	case Abort:
		return "abort"
	}
	return "unknown"
}

func ParsePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "continue":
		return Continue, nil
	case "abort":
		return Abort, nil
	}
	return Continue, fmt.Errorf("%w: %q (want continue or abort)", ErrInvalidPolicy, s)
}

// ElementError ties a failed mutation to the element it was applied to.
type ElementError struct {
	Index   int
	Content string
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d (%q): %v", e.Index, e.Content, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// Result is what a pass did.
type Result struct {
	// Matched counts the elements that were successfully changed.
	Matched  int
	Failures []*ElementError
}

// Err joins every collected failure, or returns nil.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Options configures the mark passes.
type Options struct {
	Threshold int
	Highlight Color
	Policy    FailurePolicy
}

// DefaultOptions marks content seen twice or more in pure red and keeps
// going past failures.
func DefaultOptions() Options {
	return Options{
		Threshold: 2,
		Highlight: Red,
		Policy:    Continue,
	}
}

func (o Options) validate() error {
	if o.Threshold < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidThreshold, o.Threshold)
	}
	if o.Policy != Continue && o.Policy != Abort {
		return fmt.Errorf("%w: %d", ErrInvalidPolicy, o.Policy)
	}
	return nil
}

// Frequencies counts the visible elements sharing each exact content string.
func Frequencies[E Element](elems []E) map[string]int {
	counts := make(map[string]int)
	for _, e := range elems {
		if !e.Visible() {
			continue
		}
		counts[e.Content()]++
	}
	return counts
}

// MarkDuplicates marks every visible element whose content occurs on at
// least opts.Threshold visible elements. Invisible elements are neither
// counted nor marked.
func MarkDuplicates[E Element](elems []E, opts Options, mark MarkFunc[E]) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}

	counts := Frequencies(elems)

	return MarkMatching(elems, opts, mark, func(_ int, e E) (bool, error) {
		return e.Visible() && counts[e.Content()] >= opts.Threshold, nil
	})
}

// MarkListed marks every element, visible or not, whose content equals one
// of targets.
func MarkListed[E Element](elems []E, targets []string, opts Options, mark MarkFunc[E]) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}

	return MarkMatching(elems, opts, mark, func(_ int, e E) (bool, error) {
		_, ok := set[e.Content()]
		return ok, nil
	})
}

// MarkMatching marks every element the predicate accepts. A predicate error
// aborts the pass regardless of policy, since it means the rule itself is
// broken rather than one element.
func MarkMatching[E Element](elems []E, opts Options, mark MarkFunc[E], pred func(i int, e E) (bool, error)) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}

	var res Result
	for i, e := range elems {
		ok, err := pred(i, e)
		if err != nil {
			return res, fmt.Errorf("element %d: %w", i, err)
		}
		if !ok {
			continue
		}

		if err := mark(e, opts.Highlight); err != nil {
			fail := &ElementError{Index: i, Content: e.Content(), Err: err}
			if opts.Policy == Abort {
				return res, fail
			}
			res.Failures = append(res.Failures, fail)
			continue
		}
		res.Matched++
	}

	return res, nil
}
