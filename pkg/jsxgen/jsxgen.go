// Package jsxgen writes Illustrator ExtendScript (.jsx) files that perform
// the framekit passes inside Illustrator itself, for documents that cannot
// be round-tripped through SVG.
package jsxgen

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/hoppxi/framekit/config"
	"github.com/hoppxi/framekit/pkg/marker"
)

const header = "Generated by framekit. Run via File > Scripts > Other Script..."

var templates = template.Must(
	template.New("jsx").
		Funcs(template.FuncMap{"quote": quote}).
		ParseFS(config.ConfigFS(), "jsx/*.jsx.tmpl"),
)

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.String(), nil
}

func markSuffix(c marker.Color) string {
	return fmt.Sprintf(" text items marked %s.", c)
}

// Duplicates generates the duplicate pass.
func Duplicates(threshold int, c marker.Color) (string, error) {
	if threshold < 1 {
		return "", fmt.Errorf("%w: %d (must be at least 1)", marker.ErrInvalidThreshold, threshold)
	}
	return render("duplicates.jsx.tmpl", map[string]any{
		"Header":    header,
		"Threshold": threshold,
		"Color":     c,
		"Suffix":    markSuffix(c),
	})
}

// Recolor generates the fixed-list recolor pass.
func Recolor(targets []string, c marker.Color) (string, error) {
	if len(targets) == 0 {
		return "", fmt.Errorf("no targets to recolor")
	}
	return render("recolor.jsx.tmpl", map[string]any{
		"Header":  header,
		"Targets": targets,
		"Color":   c,
		"Suffix":  markSuffix(c),
	})
}

// Replace generates a batch replacement. Pairs run in the order given.
func Replace(pairs []marker.Pair, wholeWord bool) (string, error) {
	if len(pairs) == 0 {
		return "", fmt.Errorf("no replacement pairs")
	}
	for i, p := range pairs {
		if p.Old == "" {
			return "", fmt.Errorf("pair %d: %w", i+1, marker.ErrEmptyPattern)
		}
	}
	return render("replace.jsx.tmpl", map[string]any{
		"Header":    header,
		"Pairs":     pairs,
		"WholeWord": wholeWord,
	})
}
