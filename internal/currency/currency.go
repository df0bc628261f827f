// Package currency parses and formats rupee amounts written with the Indian
// magnitude units crore (10,000,000) and lakh (100,000).
package currency

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotANumber is returned by Parse when the input is not an amount.
var ErrNotANumber = errors.New("not a currency amount")

var (
	crore = decimal.NewFromInt(10_000_000)
	lakh  = decimal.NewFromInt(100_000)

	// The unit must be the whole suffix; "1.5l" and "1.5 lakh" match, "lol" does not.
	// A sign and an exponent are accepted: "-500", "1e5", "1.2e-1 cr".
	amountPattern = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d+)?|\.\d+)(?:e[+-]?\d+)?)\s*(crores|crore|cr|lakhs|lakh|lacs|lac|l)?$`)

	symbolPrefixes = []string{"₹", "inr", "rs.", "rs"}
)

// Parse converts a free-text amount such as "2.5 cr", "1,50,000" or
// "₹3 lakh" into rupees.
func Parse(s string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, p := range symbolPrefixes {
		if strings.HasPrefix(v, p) {
			v = strings.TrimSpace(strings.TrimPrefix(v, p))
			break
		}
	}
	v = strings.ReplaceAll(v, ",", "")

	m := amountPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}

	n, err := decimal.NewFromString(strings.TrimPrefix(m[1], "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}

	switch m[2] {
	case "cr", "crore", "crores":
		n = n.Mul(crore)
	case "l", "lac", "lacs", "lakh", "lakhs":
		n = n.Mul(lakh)
	}

	f, _ := n.Float64()
	return f, nil
}

// Normalize returns numeric values unchanged and parses strings with Parse.
// A string that cannot be parsed is returned as-is.
func Normalize(v any) any {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return v
	}
	f, err := Parse(s)
	if err != nil {
		return s
	}
	return f
}

// NormalizeFields applies Normalize in place to the given keys that are
// present and non-empty.
func NormalizeFields(fields map[string]any, keys ...string) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil || v == "" {
			continue
		}
		fields[k] = Normalize(v)
	}
}

// Format renders an amount the way applicants write it: crore above ten
// million, lakh above one hundred thousand, grouped rupees otherwise.
// Empty input gives "", input that is not numeric is returned as text.
func Format(v any, withSymbol bool) string {
	f, ok, text := toFloat(v)
	if !ok {
		return text
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	d := decimal.NewFromFloat(f)
	var out string
	switch {
	case d.GreaterThanOrEqual(crore):
		out = d.Div(crore).StringFixed(2) + " crore"
	case d.GreaterThanOrEqual(lakh):
		out = d.Div(lakh).StringFixed(2) + " lakh"
	default:
		out = groupThousands(d.StringFixed(2))
	}

	if withSymbol {
		return "₹" + out
	}
	return out
}

func toFloat(v any) (float64, bool, string) {
	switch t := v.(type) {
	case nil:
		return 0, false, ""
	case float64:
		return t, true, ""
	case float32:
		return float64(t), true, ""
	case int:
		return float64(t), true, ""
	case int32:
		return float64(t), true, ""
	case int64:
		return float64(t), true, ""
	case uint:
		return float64(t), true, ""
	case uint64:
		return float64(t), true, ""
	case decimal.Decimal:
		f, _ := t.Float64()
		return f, true, ""
	case json.Number:
		f, err := t.Float64()
		return f, err == nil, t.String()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false, ""
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil, t
	default:
		return 0, false, fmt.Sprint(v)
	}
}

// groupThousands inserts commas into the integer part of a fixed-point string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
