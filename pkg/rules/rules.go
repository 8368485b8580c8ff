// Package rules compiles boolean expressions that pick text frames, e.g.
//
//	count >= 3 && layer != 'Legend'
//	hasSuffix(content, '_Yunnan') && visible
package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/knetic/govaluate"
)

// Facts are the values an expression can refer to.
type Facts struct {
	Content string
	// Count is the number of visible frames sharing Content.
	Count   int
	Layer   string
	Visible bool
}

func (f Facts) params() map[string]any {
	return map[string]any{
		"content": f.Content,
		"count":   float64(f.Count),
		"layer":   f.Layer,
		"visible": f.Visible,
		"length":  float64(utf8.RuneCountInString(f.Content)),
	}
}

var variables = map[string]bool{
	"content": true,
	"count":   true,
	"layer":   true,
	"visible": true,
	"length":  true,
}

var functions = map[string]govaluate.ExpressionFunction{
	"contains":  stringFunc("contains", strings.Contains),
	"hasPrefix": stringFunc("hasPrefix", strings.HasPrefix),
	"hasSuffix": stringFunc("hasSuffix", strings.HasSuffix),
}

func stringFunc(name string, fn func(s, sub string) bool) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", name, len(args))
		}
		s, ok1 := args[0].(string)
		sub, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s takes string arguments", name)
		}
		return fn(s, sub), nil
	}
}

type Rule struct {
	src  string
	expr *govaluate.EvaluableExpression
}

// Compile parses expr and rejects references to unknown variables.
func Compile(expr string) (*Rule, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty rule")
	}

	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
	if err != nil {
		return nil, fmt.Errorf("invalid rule %q: %w", expr, err)
	}

	for _, tok := range e.Tokens() {
		if tok.Kind != govaluate.VARIABLE {
			continue
		}
		if name, _ := tok.Value.(string); !variables[name] {
			return nil, fmt.Errorf("invalid rule %q: unknown variable %v", expr, tok.Value)
		}
	}

	return &Rule{src: expr, expr: e}, nil
}

func (r *Rule) String() string { return r.src }

// Match evaluates the rule. A rule yielding anything but a boolean is an
// error.
func (r *Rule) Match(f Facts) (bool, error) {
	v, err := r.expr.Evaluate(f.params())
	if err != nil {
		return false, fmt.Errorf("rule %q: %w", r.src, err)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("rule %q yields %T, not a boolean", r.src, v)
	}
	return b, nil
}
