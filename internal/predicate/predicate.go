// Package predicate implements the `when` condition attached to commands and
// tasks. A condition is an HCL expression evaluated against the process
// environment; it must produce a boolean.
//
// Variables:
//
//	env   map of environment variables
//	os    runtime operating system (linux, darwin, windows, ...)
//	arch  runtime architecture (amd64, arm64, ...)
//
// Functions: lower, upper, strlen, contains, coalesce, lookup, hasindex,
// regex, can, try.
//
//	when = "os != \"windows\" && lookup(env, \"CI\", \"\") == \"\""
package predicate

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var functions = map[string]function.Function{
	"lower":    stdlib.LowerFunc,
	"upper":    stdlib.UpperFunc,
	"strlen":   stdlib.StrlenFunc,
	"contains": stdlib.ContainsFunc,
	"coalesce": stdlib.CoalesceFunc,
	"lookup":   stdlib.LookupFunc,
	"hasindex": stdlib.HasIndexFunc,
	"regex":    stdlib.RegexFunc,
	"can":      tryfunc.CanFunc,
	"try":      tryfunc.TryFunc,
}

// Platform identifies the OS and architecture exposed to expressions.
type Platform struct {
	OS   string
	Arch string
}

// Host returns the platform devcmd is running on.
func Host() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Option configures Parse.
type Option func(*Expr)

// WithPlatform overrides the os and arch variables.
func WithPlatform(p Platform) Option {
	return func(e *Expr) { e.platform = p }
}

// Expr is a parsed condition.
type Expr struct {
	source   string
	expr     hclsyntax.Expression
	platform Platform
}

// Parse compiles a condition. Syntax errors and references to unknown
// variables or functions are reported here rather than at evaluation.
func Parse(source string, opts ...Option) (*Expr, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), "when", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid expression %q: %s", source, diags.Error())
	}

	for _, traversal := range expr.Variables() {
		switch root := traversal.RootName(); root {
		case "env", "os", "arch":
		default:
			return nil, fmt.Errorf("invalid expression %q: unknown variable %q, expected env, os or arch", source, root)
		}
	}
	var unknown string
	hclsyntax.VisitAll(expr, func(n hclsyntax.Node) hcl.Diagnostics {
		if call, ok := n.(*hclsyntax.FunctionCallExpr); ok && unknown == "" {
			if _, known := functions[call.Name]; !known {
				unknown = call.Name
			}
		}
		return nil
	})
	if unknown != "" {
		return nil, fmt.Errorf("invalid expression %q: unknown function %q", source, unknown)
	}

	e := &Expr{source: source, expr: expr, platform: Host()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// String returns the source text.
func (e *Expr) String() string {
	return e.source
}

// Eval evaluates the condition against an environment snapshot.
func (e *Expr) Eval(env map[string]string) (bool, error) {
	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vars[k] = cty.StringVal(v)
	}
	envVal := cty.MapValEmpty(cty.String)
	if len(vars) > 0 {
		envVal = cty.MapVal(vars)
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":  envVal,
			"os":   cty.StringVal(e.platform.OS),
			"arch": cty.StringVal(e.platform.Arch),
		},
		Functions: functions,
	}

	val, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		return false, fmt.Errorf("evaluating %q: %s", e.source, diags.Error())
	}
	if val.IsNull() || !val.IsKnown() {
		return false, fmt.Errorf("evaluating %q: result is null", e.source)
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("evaluating %q: result must be a boolean, got %s", e.source, val.Type().FriendlyName())
	}
	return b.True(), nil
}
