// Package mapping reads the plain-text lists that drive batch edits: target
// lists (one name per line) and replacement pairs (old and new per line).
package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hoppxi/framekit/pkg/marker"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type PairOptions struct {
	// SkipHeader drops the first non-blank line.
	SkipHeader bool
}

// Warning describes a line that was ignored.
type Warning struct {
	Line int
	Text string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: ignoring malformed line %q", w.Line, w.Text)
}

// decode strips a UTF-8 BOM and decodes UTF-16 input that starts with one.
func decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadTargets returns the trimmed, non-blank lines of r.
func ReadTargets(r io.Reader) ([]string, error) {
	var targets []string
	sc := bufio.NewScanner(decode(r))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		targets = append(targets, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}
	return targets, nil
}

// ReadPairs parses replacement pairs. Lines holding a tab are split on
// tabs so either side may contain spaces; other lines are split on runs of
// whitespace. Only the first two columns are used.
func ReadPairs(r io.Reader, opts PairOptions) ([]marker.Pair, []Warning, error) {
	var (
		pairs    []marker.Pair
		warnings []Warning
		lineNo   int
		skipped  bool
	)

	sc := bufio.NewScanner(decode(r))
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if opts.SkipHeader && !skipped {
			skipped = true
			continue
		}

		var cols []string
		if strings.Contains(line, "\t") {
			for _, c := range strings.Split(line, "\t") {
				if c = strings.TrimSpace(c); c != "" {
					cols = append(cols, c)
				}
			}
		} else {
			cols = strings.Fields(line)
		}

		if len(cols) < 2 {
			warnings = append(warnings, Warning{Line: lineNo, Text: raw})
			continue
		}
		pairs = append(pairs, marker.Pair{Old: cols[0], New: cols[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, warnings, fmt.Errorf("failed to read pairs: %w", err)
	}
	return pairs, warnings, nil
}

// SortLongestFirst orders pairs by descending length of Old so a longer
// name is replaced before any shorter name it contains.
func SortLongestFirst(pairs []marker.Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return len([]rune(pairs[i].Old)) > len([]rune(pairs[j].Old))
	})
}

func ReadTargetsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTargets(f)
}

func ReadPairsFile(path string, opts PairOptions) ([]marker.Pair, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadPairs(f, opts)
}
