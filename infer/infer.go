// Package infer converts raw string settings into typed scalar values.
//
// Untyped formats (INI, dotenv, XML, environment variables) deliver every
// value as a string. Infer applies a fixed precedence to recover the value
// the author most likely meant: integer, then float, then boolean word,
// then a comma-separated list inferred element-wise, then the string
// unchanged. Inference is applied to every string leaf of a store, however
// deeply nested.
package infer

import (
	"strconv"
	"strings"
)

// listSeparator is the exact separator recognized inside list literals.
// A bare comma is not enough: "a,b" stays a string while "a, b" splits.
const listSeparator = ", "

// Scalar converts a raw string into its most specific scalar form.
//
// The precedence order is significant: "3, 4" becomes a list of integers
// because the integer and float parses fail on the whole string before the
// list split is attempted, and "43" becomes an int before a float parse is
// ever tried.
func Scalar(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	if strings.Contains(raw, listSeparator) {
		parts := strings.Split(raw, listSeparator)
		list := make([]any, 0, len(parts))
		for _, part := range parts {
			list = append(list, Scalar(part))
		}
		return list
	}
	return raw
}

// Any infers v when it is a string, applies itself element-wise when v is
// a []any, and passes every other value through unchanged. Applying Any to
// its own output is a no-op unless the output still contains strings.
func Any(v any) any {
	switch val := v.(type) {
	case string:
		return Scalar(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Any(elem)
		}
		return out
	default:
		return v
	}
}
