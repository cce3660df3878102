package checklist

import (
	"fmt"
	"strconv"
	"strings"
)

// Values are raw answers keyed by field id, as decoded from JSON.
type Values map[string]interface{}

// Visible reports whether f is shown given the current answers.
func Visible(f Field, values Values) bool {
	dep := f.DependsOn
	if dep == nil || len(dep.Rules) == 0 {
		return true
	}
	matchAny := dep.When == "any"
	for _, r := range dep.Rules {
		ok := ruleHolds(r, values[r.FieldID])
		if matchAny && ok {
			return true
		}
		if !matchAny && !ok {
			return false
		}
	}
	return !matchAny
}

func ruleHolds(r Rule, actual interface{}) bool {
	switch r.Operator {
	case OpEquals:
		return looselyEqual(actual, r.Value)
	case OpNotEquals:
		return !looselyEqual(actual, r.Value)
	case OpIn:
		list, ok := r.Value.([]interface{})
		if !ok {
			return false
		}
		for _, candidate := range list {
			if looselyEqual(actual, candidate) {
				return true
			}
		}
	}
	return false
}

// looselyEqual compares JSON-decoded scalars; numbers compare by value.
func looselyEqual(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && (a == nil) == (b == nil)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isEmpty(f Field, v interface{}) bool {
	if v == nil {
		return true
	}
	if f.isBoolean() {
		b, ok := toBool(v)
		return !ok || !b
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	return false, false
}

func toNumber(v interface{}) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}
