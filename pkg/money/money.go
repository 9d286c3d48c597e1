// Package money normalizes heterogeneous price inputs into whole currency
// units. Admin forms submit prices as formatted strings ("KSh 1,250,000"),
// floats, or integers; storage only ever sees a non-negative int64.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize coerces raw into a non-negative int64 amount. Fractional parts
// are truncated, never rounded. Anything unparsable or negative normalizes
// to 0; dropping bad input instead of failing the whole mutation is a
// documented lossy fallback.
func Normalize(raw any) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return clamp(int64(v))
	case int32:
		return clamp(int64(v))
	case int64:
		return clamp(v)
	case float32:
		return clamp(decimal.NewFromFloat32(v).IntPart())
	case float64:
		return clamp(decimal.NewFromFloat(v).IntPart())
	case json.Number:
		return NormalizeString(v.String())
	case string:
		return NormalizeString(v)
	default:
		return 0
	}
}

// NormalizeString strips currency symbols and thousands separators, then
// parses what remains. A sign is only honored at the front of the number.
func NormalizeString(raw string) int64 {
	cleaned := stripFormatting(raw)
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return clamp(d.IntPart())
}

func stripFormatting(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case (r == '-' || r == '+') && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
