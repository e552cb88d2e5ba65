// Package numeric parses the heterogeneous numeric representations found in
// scraped market tables ("1.23B", "12,345.6", "--", 42.5) into canonical
// float64 values. Malformed input degrades to absent, never to zero and
// never to a panic.
package numeric

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// unit suffixes seen in volume / market-cap columns
var suffixMultipliers = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

var signedDecimalRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// Parse converts v into a float64. The second return is false when the value
// is absent or unparseable; callers must treat that as "omit this field".
func Parse(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		return parseString(x)
	default:
		return 0, false
	}
}

// ParsePercent extracts the first signed decimal found anywhere in v,
// tolerating a trailing '%' and surrounding text ("+3.4%", "up 3.4 %").
func ParsePercent(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return Parse(v)
	}
	s = strings.TrimSpace(s)
	if s == "" || isPlaceholder(s) {
		return 0, false
	}
	m := signedDecimalRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isPlaceholder(s) {
		return 0, false
	}

	// thousands separators
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	if n := len(s); n > 1 {
		if m, ok := suffixMultipliers[upperByte(s[n-1])]; ok {
			mult = m
			s = s[:n-1]
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f * mult, true
}

func isPlaceholder(s string) bool {
	switch s {
	case "--", "-", "N/A", "n/a", "—":
		return true
	}
	return false
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
