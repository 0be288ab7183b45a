package core

// coerce.go converts projected CSV text into warehouse values.
//
// Rules per field type:
//   - Text: the literal cell, untouched
//   - Numeric: float64; empty, unparseable, NaN and infinite values become 0
//   - Timestamp: all-or-nothing per column. If every cell parses with one of
//     the accepted layouts the parsed times are kept; otherwise every row of
//     the column gets the ingestion time.
//
// Numbers are not cleaned of currency symbols or separators: "1,200" is 0.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Timestamp layouts, tried in order. Layouts carrying an offset keep it;
// the rest are read as UTC.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
	}
	dateTimeLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
	}
	// Slash and dash dates are month-first; dotted dates are day-first.
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "2.1.2006", "02.01.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "2.1.06", "02.01.06",
	}
)

// Coerce converts projected rows (aligned with def.FieldSpecs) into typed
// warehouse values. now is used for timestamp columns that cannot be parsed.
func Coerce(def TableDefinition, rows [][]string, now time.Time) [][]any {
	out := make([][]any, len(rows))
	for i := range rows {
		out[i] = make([]any, len(def.FieldSpecs))
	}

	for j, f := range def.FieldSpecs {
		switch f.Type {
		case FieldNumeric:
			for i, row := range rows {
				out[i][j] = ToNumber(row[j])
			}
		case FieldTimestamp:
			times, ok := parseTimestampColumn(rows, j, now)
			for i := range rows {
				if ok {
					out[i][j] = times[i]
				} else {
					out[i][j] = now
				}
			}
		default:
			for i, row := range rows {
				out[i][j] = row[j]
			}
		}
	}

	return out
}

// ToNumber converts a string to float64.
// Returns 0 if the string is empty, not a number, NaN or infinite.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToTimestamp converts a string to a time.
// Supports RFC 3339, ISO date-times, multiple date formats, and 2-digit years
// with pivot relative to now. Returns false if no layout matches.
func ToTimestamp(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := now.Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

func parseTimestampColumn(rows [][]string, col int, now time.Time) ([]time.Time, bool) {
	times := make([]time.Time, len(rows))
	for i, row := range rows {
		t, ok := ToTimestamp(row[col], now)
		if !ok {
			return nil, false
		}
		times[i] = t
	}
	return times, true
}
