// ABOUTME: Resolve substitutes %{...} tokens in string parameter values against a
// ABOUTME: variable scope, evaluates simple arithmetic, and re-infers the result's type.
//
// This is a direct port of original_source/antz/infrastructure/core/variables.py,
// not an idiom borrowed from the teacher repo (which has no expression
// evaluator of its own) — including its one deliberately-reproduced quirk:
// type inference accepts any substring of "true"/"false", not just an exact
// match (spec.md §4.4, §9).
package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/2389-research/conveyor/config"
)

var tokenPattern = regexp.MustCompile(`%\{[^}]*\}`)

// Parameters substitutes every %{...} expression in every string value of
// params against scope, re-inferring the primitive type of any value that
// changed. Null parameters resolve to null; a null scope returns params
// unchanged (spec.md §4.4's resolver contract). List and nested-
// configuration values pass through untouched.
func Parameters(params config.Parameters, scope config.Scope) (config.Parameters, error) {
	if params == nil {
		return nil, nil
	}
	if scope == nil {
		return params, nil
	}
	out := make(config.Parameters, len(params))
	for k, v := range params {
		rv, err := value(v, scope)
		if err != nil {
			return nil, fmt.Errorf("resolve parameter %q: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func value(v any, scope config.Scope) (any, error) {
	s, ok := v.(string)
	if !ok {
		// non-string primitives, []Primitive, and nested Nodes pass through.
		return v, nil
	}
	return resolveString(s, scope)
}

func resolveString(s string, scope config.Scope) (any, error) {
	matches := tokenPattern.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var sb strings.Builder
	lastEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		sb.WriteString(s[lastEnd:start])
		inner := trimSpace(s[start+2 : end-1])
		val, err := resolveExpression(inner, scope)
		if err != nil {
			return nil, err
		}
		sb.WriteString(stringify(val))
		lastEnd = end
	}
	sb.WriteString(s[lastEnd:])

	return inferType(sb.String()), nil
}

// resolveExpression implements the recursive split described in spec.md
// §4.4: find the first occurrence of '-', else '+', else '/', else '*' and
// recurse on the left/right halves; a token with no operator resolves
// against scope (or passes through as its own literal text if absent).
func resolveExpression(expr string, scope config.Scope) (any, error) {
	type op struct {
		ch byte
	}
	for _, o := range []byte{'-', '+', '/', '*'} {
		idx := strings.IndexByte(expr, o)
		if idx < 0 {
			continue
		}
		leftStr := trimRight(expr[:idx])
		rightStr := trimLeft(expr[idx+1:])

		leftVal, err := resolveExpression(leftStr, scope)
		if err != nil {
			return nil, err
		}
		rightVal, err := resolveExpression(rightStr, scope)
		if err != nil {
			return nil, err
		}

		ln, err := toNumeric(leftVal)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve arithmetic with %q: %w", leftStr, err)
		}
		rn, err := toNumeric(rightVal)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve arithmetic with %q: %w", rightStr, err)
		}

		switch o {
		case '-':
			return arithSub(ln, rn), nil
		case '+':
			return arithAdd(ln, rn), nil
		case '/':
			return toFloat(ln) / toFloat(rn), nil // true division: always float, like Python's `/`
		case '*':
			return arithMul(ln, rn), nil
		}
	}

	return resolveToken(expr, scope), nil
}

// resolveToken looks up a variable name in scope, stringifying whatever it
// finds (scope values are already typed Primitives; resolveExpression's
// operator branches re-infer numeric types as needed). A name absent from
// scope resolves to its own literal text.
func resolveToken(token string, scope config.Scope) string {
	token = strings.TrimSpace(token)
	if scope == nil {
		return token
	}
	if v, ok := scope[token]; ok {
		return stringify(v)
	}
	return token
}

func toNumeric(v any) (any, error) {
	switch t := v.(type) {
	case int64, float64:
		return t, nil
	case string:
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("%q is not numeric", t)
	default:
		return nil, fmt.Errorf("value of type %T is not numeric", v)
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}

func arithSub(l, r any) any {
	if li, lok := l.(int64); lok {
		if ri, rok := r.(int64); rok {
			return li - ri
		}
	}
	return toFloat(l) - toFloat(r)
}

func arithAdd(l, r any) any {
	if li, lok := l.(int64); lok {
		if ri, rok := r.(int64); rok {
			return li + ri
		}
	}
	return toFloat(l) + toFloat(r)
}

func arithMul(l, r any) any {
	if li, lok := l.(int64); lok {
		if ri, rok := r.(int64); rok {
			return li * ri
		}
	}
	return toFloat(l) * toFloat(r)
}

// inferType tries int, then float, then the true/false substring-of check
// spec.md §4.4/§9 requires be reproduced exactly: "tru" and "" both infer
// to true because Python's `val.lower() in 'true'` is a substring test, not
// an equality test. This is flagged there as possibly unintended but
// binding for compatibility.
func inferType(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	lower := strings.ToLower(s)
	if strings.Contains("true", lower) {
		return true
	}
	if strings.Contains("false", lower) {
		return false
	}
	return s
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return pyFloatString(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// pyFloatString mimics Python's str(float) for the finite, non-scientific
// range this domain's arithmetic produces: an integral float always keeps
// one decimal place (str(3.0) == "3.0"), matching the rendering the
// original resolver relies on before re-inferring the type of the whole
// substituted string.
func pyFloatString(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
