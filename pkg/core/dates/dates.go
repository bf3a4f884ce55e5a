// Package dates normalizes the heterogeneous date text found in flight
// manifests into canonical calendar dates usable as grouping keys.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Normalized is the result of parsing a raw date string. Zero value means
// "no date" (blank input).
type Normalized struct {
	Time time.Time
	ISO  string
}

// IsZero reports whether the input was blank.
func (n Normalized) IsZero() bool {
	return n.ISO == ""
}

// Equal reports whether two normalized dates name the same calendar day.
func (n Normalized) Equal(other Normalized) bool {
	return n.ISO == other.ISO
}

type layout struct {
	sep      string // component separator in the raw text
	dayFirst bool   // true for D/M/YYYY shapes, false for YYYY-MM-DD
}

// Normalize parses raw date text in one of the accepted shapes: YYYY-MM-DD,
// D/M/YYYY or DD/MM/YYYY, D-M-YYYY or DD-MM-YYYY. Single-digit day and month
// are zero-padded before parsing. The parsed date must re-serialize exactly
// to the padded input; anything that rolls over (e.g. 31/02/2024) is
// rejected rather than silently landing in the next month. Blank input
// normalizes to the zero Normalized, not an error.
func Normalize(raw string) (Normalized, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Normalized{}, nil
	}

	parts, shape, err := split(text)
	if err != nil {
		return Normalized{}, err
	}

	var year, month, day string
	if shape.dayFirst {
		day, month, year = pad2(parts[0]), pad2(parts[1]), parts[2]
	} else {
		year, month, day = parts[0], pad2(parts[1]), pad2(parts[2])
	}
	if len(year) != 4 {
		return Normalized{}, fmt.Errorf("date %q: year must have four digits", raw)
	}

	iso := year + "-" + month + "-" + day
	t, err := time.ParseInLocation("2006-01-02", iso, time.UTC)
	if err != nil {
		return Normalized{}, fmt.Errorf("date %q: %w", raw, err)
	}

	// Overflowing dates like 31/02 must never roll into the next month;
	// requiring an exact round-trip rules that out regardless of how
	// lenient the parser is.
	if t.Format("2006-01-02") != iso {
		return Normalized{}, fmt.Errorf("date %q: not a valid calendar date", raw)
	}

	return Normalized{Time: t, ISO: iso}, nil
}

func split(text string) ([]string, layout, error) {
	for _, l := range []layout{
		{sep: "/", dayFirst: true},
		{sep: "-", dayFirst: true},
	} {
		if !strings.Contains(text, l.sep) {
			continue
		}
		parts := strings.Split(text, l.sep)
		if len(parts) != 3 {
			return nil, layout{}, fmt.Errorf("date %q: expected three components", text)
		}
		for _, p := range parts {
			if p == "" || !digitsOnly(p) {
				return nil, layout{}, fmt.Errorf("date %q: non-numeric component", text)
			}
		}
		// A dash-separated string leading with four digits is ISO,
		// not day-first.
		if l.sep == "-" && len(parts[0]) == 4 {
			return parts, layout{sep: "-", dayFirst: false}, nil
		}
		return parts, l, nil
	}
	return nil, layout{}, fmt.Errorf("date %q: unrecognized format", text)
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
