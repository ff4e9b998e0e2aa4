package config

import (
	"fmt"
	"math"
	"sort"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// Params gives typed access to a step's params map. Lookups return the value
// and whether the key was present; a value of the wrong type is recorded and
// reported by Err, so builders can read every key and check once.
type Params struct {
	stepType string
	values   map[string]interface{}
	used     map[string]bool
	err      error
}

func newParams(stepType string, values map[string]interface{}) *Params {
	return &Params{stepType: stepType, values: values, used: make(map[string]bool)}
}

func (p *Params) lookup(key string) (interface{}, bool) {
	v, ok := p.values[key]
	if ok {
		p.used[key] = true
	}
	return v, ok && v != nil
}

func (p *Params) fail(key, reason string, value interface{}) {
	if p.err == nil {
		p.err = serrors.NewValidationError(key, fmt.Sprintf("%s: %s", p.stepType, reason), value)
	}
}

// Err returns the first type error met by a lookup.
func (p *Params) Err() error {
	return p.err
}

// Has reports whether key is set.
func (p *Params) Has(key string) bool {
	_, ok := p.lookup(key)
	return ok
}

// Float reads a number.
func (p *Params) Float(key string) (float64, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, false
	}
	f, isNum := toFloat(v)
	if !isNum {
		p.fail(key, "must be a number", v)
		return 0, false
	}
	return f, true
}

// Int reads an integer. Integral floats, as produced by JSON, are accepted.
func (p *Params) Int(key string) (int, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, false
	}
	f, isNum := toFloat(v)
	if !isNum || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		p.fail(key, "must be an integer", v)
		return 0, false
	}
	return int(f), true
}

// String reads a string.
func (p *Params) String(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	s, isStr := v.(string)
	if !isStr {
		p.fail(key, "must be a string", v)
		return "", false
	}
	return s, true
}

// Bool reads a boolean.
func (p *Params) Bool(key string) (bool, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return false, false
	}
	b, isBool := v.(bool)
	if !isBool {
		p.fail(key, "must be a boolean", v)
		return false, false
	}
	return b, true
}

// Floats reads a list of numbers.
func (p *Params) Floats(key string) ([]float64, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return nil, false
	}
	var items []interface{}
	switch list := v.(type) {
	case []interface{}:
		items = list
	case []float64:
		return append([]float64(nil), list...), true
	default:
		p.fail(key, "must be a list of numbers", v)
		return nil, false
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, isNum := toFloat(item)
		if !isNum {
			p.fail(key, fmt.Sprintf("element %d must be a number", i), item)
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// unused returns a ValidationError naming the first key no lookup asked for.
func (p *Params) unused() error {
	var keys []string
	for k := range p.values {
		if !p.used[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return serrors.NewValidationError(keys[0], fmt.Sprintf("unknown parameter for step type %s", p.stepType), p.values[keys[0]])
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
