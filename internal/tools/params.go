package tools

import (
	"strconv"
)

// Params carries parameter values keyed by parameter name. Values arrive
// from JSON decoding, so numbers may be float64, int or numeric strings.
type Params map[string]any

// Number returns the named parameter as a float64, falling back to def when
// absent or not numeric.
func (p Params) Number(name string, def float64) float64 {
	v, ok := p[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// Text returns the named parameter as a string, falling back to def.
func (p Params) Text(name, def string) string {
	if v, ok := p[name]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// num renders a float without trailing zeros, so whole numbers interpolate
// as "100" rather than "100.000000".
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quote wraps a geometry reference in double quotes. No escaping happens
// here; see the package comment for the trust boundary.
func quote(ref string) string {
	return `"` + ref + `"`
}

func fptr(f float64) *float64 { return &f }
