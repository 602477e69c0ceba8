package detect

import (
	"math"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"schemalens/domain/schema"
	"schemalens/domain/value"
)

// Predicate reports whether a single value belongs to a field type. Every
// predicate is stateless and pure.
type Predicate func(v value.Value) bool

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	currencyRe   = regexp.MustCompile(`^\(?\s*[$€£¥]\s*-?[\d,]+(\.\d+)?\s*\)?$|^\(?\s*-?[\d,]+(\.\d+)?\s*(USD|EUR|GBP|JPY)\s*\)?$`)
	percentageRe = regexp.MustCompile(`^-?\d+(\.\d+)?\s?%$`)
	phoneRe      = regexp.MustCompile(`^\+?[\d\s().-]{7,20}$`)
	postalUSRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	postalCARe   = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z]\s?\d[A-Za-z]\d$`)
	identRe      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{5,}$`)
	integerRe    = regexp.MustCompile(`^[+-]?\d+$`)
	numberRe     = regexp.MustCompile(`^[+-]?(\d{1,3}(,\d{3})+|\d+)(\.\d+)?([eE][+-]?\d+)?$`)
	digitRe      = regexp.MustCompile(`\d`)
)

// predicates maps every field type to its classifier, in no particular
// order; schema.DetectionOrder fixes the evaluation order. Populated in
// init to break the initialization cycle with isGenericString.
var predicates map[schema.FieldType]Predicate

func init() {
	predicates = map[schema.FieldType]Predicate{
		schema.TypeNull:       isNull,
		schema.TypeBoolean:    isBoolean,
		schema.TypeInteger:    isInteger,
		schema.TypeNumber:     isNumber,
		schema.TypeDate:       isDate,
		schema.TypeDateTime:   isDateTime,
		schema.TypeTime:       isTime,
		schema.TypeEmail:      isEmail,
		schema.TypeURL:        isURL,
		schema.TypeCurrency:   isCurrency,
		schema.TypePercentage: isPercentage,
		schema.TypeIPAddress:  isIPAddress,
		schema.TypePhone:      isPhone,
		schema.TypePostalCode: isPostalCode,
		schema.TypeIdentifier: isIdentifier,
		schema.TypeString:     isGenericString,
		schema.TypeArray:      isArray,
		schema.TypeObject:     isObject,
	}
}

// specialStringPredicates are evaluated only when special-type detection is
// enabled. Identifier is included: it is a format refinement of string.
var specialStringPredicates = map[schema.FieldType]bool{
	schema.TypeDate:       true,
	schema.TypeDateTime:   true,
	schema.TypeTime:       true,
	schema.TypeEmail:      true,
	schema.TypeURL:        true,
	schema.TypeCurrency:   true,
	schema.TypePercentage: true,
	schema.TypeIPAddress:  true,
	schema.TypePhone:      true,
	schema.TypePostalCode: true,
	schema.TypeIdentifier: true,
}

func isNull(v value.Value) bool {
	return v.Kind == value.KindNull
}

func isBoolean(v value.Value) bool {
	if v.Kind == value.KindBool {
		return true
	}
	if v.Kind == value.KindString {
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true", "false":
			return true
		}
	}
	return false
}

func isInteger(v value.Value) bool {
	switch v.Kind {
	case value.KindInt:
		return true
	case value.KindFloat:
		return v.Float == math.Trunc(v.Float)
	case value.KindString:
		return integerRe.MatchString(strings.TrimSpace(v.Str))
	}
	return false
}

func isNumber(v value.Value) bool {
	switch v.Kind {
	case value.KindInt, value.KindFloat:
		return true
	case value.KindString:
		s := strings.TrimSpace(v.Str)
		if !numberRe.MatchString(s) {
			return false
		}
		_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		return err == nil
	}
	return false
}

func isDate(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	_, ok := ParseDate(v.Str)
	return ok
}

func isDateTime(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	_, ok := ParseDateTime(v.Str)
	return ok
}

func isTime(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	_, ok := ParseClockTime(v.Str)
	return ok
}

func isEmail(v value.Value) bool {
	return v.Kind == value.KindString && emailRe.MatchString(strings.TrimSpace(v.Str))
}

func isURL(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	s := strings.TrimSpace(v.Str)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

func isCurrency(v value.Value) bool {
	return v.Kind == value.KindString && currencyRe.MatchString(strings.TrimSpace(v.Str))
}

func isPercentage(v value.Value) bool {
	return v.Kind == value.KindString && percentageRe.MatchString(strings.TrimSpace(v.Str))
}

func isIPAddress(v value.Value) bool {
	return v.Kind == value.KindString && net.ParseIP(strings.TrimSpace(v.Str)) != nil
}

func isPhone(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	s := strings.TrimSpace(v.Str)
	if !phoneRe.MatchString(s) {
		return false
	}
	// Require enough digits so short numeric codes don't read as phones
	return len(digitRe.FindAllString(s, -1)) >= 7
}

func isPostalCode(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	s := strings.TrimSpace(v.Str)
	return postalUSRe.MatchString(s) || postalCARe.MatchString(s)
}

func isIdentifier(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	s := strings.TrimSpace(v.Str)
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	// Code-like tokens: long alphanumerics that carry at least one digit
	// and at least one letter ("ORD-10293", "a1b2c3"), not plain numbers.
	return identRe.MatchString(s) && digitRe.MatchString(s) && !integerRe.MatchString(s)
}

// isGenericString accepts only strings that no specialized format explains.
// Plain-text residual classification keeps a column of emails from scoring
// 1.0 on both email and string.
func isGenericString(v value.Value) bool {
	if v.Kind != value.KindString {
		return false
	}
	for t := range specialStringPredicates {
		if predicates[t](v) {
			return false
		}
	}
	// Numeric and boolean strings are also better explained elsewhere
	if isNumber(v) || isBoolean(v) {
		return false
	}
	return true
}

// isAnyString accepts every string value. Used in place of isGenericString
// when special-type detection is disabled.
func isAnyString(v value.Value) bool {
	return v.Kind == value.KindString
}

func isArray(v value.Value) bool {
	return v.Kind == value.KindArray
}

func isObject(v value.Value) bool {
	return v.Kind == value.KindObject
}

// Matches runs the predicate for a single type against a raw value
func Matches(raw interface{}, t schema.FieldType) bool {
	p, ok := predicates[t]
	if !ok {
		return false
	}
	return p(value.Of(raw))
}
