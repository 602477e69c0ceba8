package detect

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"schemalens/domain/value"
)

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

// ParseNumeric attempts a tolerant float parse of a raw value. String-encoded
// numbers may carry currency symbols, a percent sign, thousands separators
// and parentheses for negatives; non-finite results are rejected.
func ParseNumeric(raw interface{}) (float64, bool) {
	v := value.Of(raw)
	switch v.Kind {
	case value.KindInt:
		return float64(v.Int), true
	case value.KindFloat:
		return v.Float, true
	case value.KindString:
		return parseNumericString(v.Str)
	default:
		return 0, false
	}
}

func parseNumericString(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	// Accounting notation: (123) means -123
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	for _, sym := range currencySymbols {
		clean = strings.ReplaceAll(clean, sym, "")
	}
	clean = strings.ReplaceAll(clean, "%", "")
	clean = strings.TrimSpace(clean)

	// Thousands separators
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, " ", "")

	if negative {
		clean = "-" + clean
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseBool recognizes boolean values and the usual string spellings
func ParseBool(raw interface{}) (bool, bool) {
	v := value.Of(raw)
	switch v.Kind {
	case value.KindBool:
		return v.Bool, true
	case value.KindString:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
}

// ParseDate parses a date-only string
func ParseDate(s string) (time.Time, bool) {
	return parseLayouts(s, dateLayouts)
}

// ParseDateTime parses a timestamp string
func ParseDateTime(s string) (time.Time, bool) {
	return parseLayouts(s, dateTimeLayouts)
}

// ParseClockTime parses a time-of-day string
func ParseClockTime(s string) (time.Time, bool) {
	return parseLayouts(s, timeLayouts)
}

// ParseTemporal is the permissive parser used by the statistics calculator:
// any date or datetime layout is accepted.
func ParseTemporal(raw interface{}) (time.Time, bool) {
	s, err := cast.ToStringE(raw)
	if err != nil {
		return time.Time{}, false
	}
	if t, ok := ParseDateTime(s); ok {
		return t, true
	}
	return ParseDate(s)
}

func parseLayouts(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
