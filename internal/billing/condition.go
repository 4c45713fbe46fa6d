package billing

import (
	"reflect"
	"strings"
)

// Context is the object condition fields are resolved against. Values may be
// nested maps; dotted field paths walk into them.
type Context map[string]any

// EvaluateCondition evaluates a single comparison against the context.
// It is pure, performs no I/O and never panics: an unresolvable field or a
// type mismatch makes the condition false rather than an error, so a bad
// condition can never fire a rule by accident.
func EvaluateCondition(cond RuleCondition, ctx Context) bool {
	resolved, ok := resolveField(ctx, cond.Field)
	if !ok {
		resolved = nil
	}

	switch cond.Operator {
	case OpEq:
		return looseEqual(resolved, cond.Value)
	case OpNe:
		return !looseEqual(resolved, cond.Value)
	case OpGt:
		return numericCompare(resolved, cond.Value, func(a, b float64) bool { return a > b })
	case OpGte:
		return numericCompare(resolved, cond.Value, func(a, b float64) bool { return a >= b })
	case OpLt:
		return numericCompare(resolved, cond.Value, func(a, b float64) bool { return a < b })
	case OpLte:
		return numericCompare(resolved, cond.Value, func(a, b float64) bool { return a <= b })
	case OpIn:
		for _, candidate := range cond.Values {
			if looseEqual(resolved, candidate) {
				return true
			}
		}
		return false
	case OpBetween:
		if cond.Range == nil {
			return false
		}
		value, ok := toFloat(resolved)
		if !ok {
			return false
		}
		return value >= cond.Range.Low && value <= cond.Range.High
	default:
		return false
	}
}

// EvaluateAll combines conditions with logical AND. An empty list is
// vacuously true.
func EvaluateAll(conds []RuleCondition, ctx Context) bool {
	for _, cond := range conds {
		if !EvaluateCondition(cond, ctx) {
			return false
		}
	}
	return true
}

// resolveField walks a dotted path through nested maps. The second return is
// false when any path segment is missing or a non-map value is traversed.
func resolveField(ctx Context, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = map[string]any(ctx)
	for _, segment := range strings.Split(path, ".") {
		node, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Context:
		return m, true
	default:
		return nil, false
	}
}

// looseEqual compares two values the way rule authors expect: numbers
// compare numerically regardless of concrete Go type (JSON decoding yields
// float64, typed callers pass ints), everything else compares strictly.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}

	if a == b {
		return true
	}

	return reflect.DeepEqual(a, b)
}

func numericCompare(a, b any, cmp func(a, b float64) bool) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	return cmp(af, bf)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
