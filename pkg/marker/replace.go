package marker

import (
	"fmt"
	"regexp"
	"strings"
)

// Pair is one literal old -> new substitution.
type Pair struct {
	Old string
	New string
}

// PairResult is the outcome of applying one Pair.
type PairResult struct {
	Pair
	Result
}

// Replace rewrites every non-overlapping occurrence of old with new in each
// element that contains it. An element counts once however many
// occurrences it held. Visibility is ignored.
func Replace[E Editable](elems []E, old, new string, policy FailurePolicy) (Result, error) {
	if old == "" {
		return Result{}, ErrEmptyPattern
	}
	return edit(elems, policy, func(s string) (string, bool) {
		if !strings.Contains(s, old) {
			return s, false
		}
		return strings.ReplaceAll(s, old, new), true
	})
}

// ReplaceBatch applies pairs in order. With wholeWord set, old only matches
// when bounded by a non-word character or the ends of the content, and the
// bounding characters are kept.
func ReplaceBatch[E Editable](elems []E, pairs []Pair, wholeWord bool, policy FailurePolicy) ([]PairResult, int, error) {
	results := make([]PairResult, 0, len(pairs))
	total := 0

	for _, p := range pairs {
		var (
			res Result
			err error
		)
		if wholeWord {
			res, err = replaceWord(elems, p, policy)
		} else {
			res, err = Replace(elems, p.Old, p.New, policy)
		}
		results = append(results, PairResult{Pair: p, Result: res})
		total += res.Matched
		if err != nil {
			return results, total, fmt.Errorf("replace %q: %w", p.Old, err)
		}
	}

	return results, total, nil
}

func replaceWord[E Editable](elems []E, p Pair, policy FailurePolicy) (Result, error) {
	if p.Old == "" {
		return Result{}, ErrEmptyPattern
	}
	re := regexp.MustCompile(`(^|\W)` + regexp.QuoteMeta(p.Old) + `(\W|$)`)
	repl := "${1}" + strings.ReplaceAll(p.New, "$", "$$") + "${2}"

	return edit(elems, policy, func(s string) (string, bool) {
		if !re.MatchString(s) {
			return s, false
		}
		return re.ReplaceAllString(s, repl), true
	})
}

func edit[E Editable](elems []E, policy FailurePolicy, fn func(string) (string, bool)) (Result, error) {
	var res Result
	for i, e := range elems {
		before := e.Content()
		after, ok := fn(before)
		if !ok {
			continue
		}

		if err := e.SetContent(after); err != nil {
			fail := &ElementError{Index: i, Content: before, Err: err}
			if policy == Abort {
				return res, fail
			}
			res.Failures = append(res.Failures, fail)
			continue
		}
		res.Matched++
	}
	return res, nil
}
