package actor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/selector"
)

// DecrementActor subtracts one from every selected numeric value.
type DecrementActor struct {
	*Actor
	PassThrough
}

// Decrement builds a DecrementActor over inner.
func Decrement(inner core.Graph, sel selector.Selector, opts ...Option) (*DecrementActor, error) {
	d := &DecrementActor{Actor: &Actor{}}
	if err := d.bind(inner, sel, d, d, opts); err != nil {
		return nil, err
	}

	return d, nil
}

// TransformValue decrements integers and floats; other values pass through.
func (*DecrementActor) TransformValue(_ context.Context, x any) (any, error) {
	switch n := x.(type) {
	case int:
		return n - 1, nil
	case int8:
		return n - 1, nil
	case int16:
		return n - 1, nil
	case int32:
		return n - 1, nil
	case int64:
		return n - 1, nil
	case float32:
		return n - 1, nil
	case float64:
		return n - 1, nil
	default:
		return x, nil
	}
}

// ToNumberActor converts selected values to float64.
type ToNumberActor struct {
	*Actor
	PassThrough
}

// ToNumber builds a ToNumberActor over inner.
func ToNumber(inner core.Graph, sel selector.Selector, opts ...Option) (*ToNumberActor, error) {
	a := &ToNumberActor{Actor: &Actor{}}
	if err := a.bind(inner, sel, a, a, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// TransformValue converts integers, floats and decimal strings to float64.
// Strings are parsed independently of locale ("1.5", "-2e3"); anything that
// does not parse, and any other type, passes through unchanged.
func (*ToNumberActor) TransformValue(_ context.Context, x any) (any, error) {
	if f, ok := toFloat(x); ok {
		return f, nil
	}
	if s, ok := x.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}

	return x, nil
}

// StringReplaceActor rewrites selected string values with a regular expression.
type StringReplaceActor struct {
	*Actor
	PassThrough
	re          *regexp.Regexp
	replacement string
}

// StringReplace replaces every match of pattern in selected string values
// with replacement ($1-style group references are expanded).
// Errors: core.ErrInvalidSelection for an invalid pattern.
func StringReplace(inner core.Graph, sel selector.Selector, pattern, replacement string, opts ...Option) (*StringReplaceActor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: replace pattern: %w", core.ErrInvalidSelection, err)
	}
	a := &StringReplaceActor{Actor: &Actor{}, re: re, replacement: replacement}
	if err := a.bind(inner, sel, a, a, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// TransformValue rewrites strings; other values pass through.
func (a *StringReplaceActor) TransformValue(_ context.Context, x any) (any, error) {
	s, ok := x.(string)
	if !ok {
		return x, nil
	}

	return a.re.ReplaceAllString(s, a.replacement), nil
}

// toFloat converts Go numeric kinds to float64.
func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
