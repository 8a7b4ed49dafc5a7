// Package tabular turns delimited uploads into typed row records and a
// column schema.
package tabular

import (
	"regexp"
	"strconv"
	"time"

	"docsift/internal/models"
)

// Classification patterns, checked in precedence order. The numeric and
// boolean patterns are anchored and must match the whole value; the timestamp
// pattern deliberately matches a substring so values with embedded timestamps
// still classify as timestamps.
var (
	integerPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern     = regexp.MustCompile(`^-?\d+\.\d+$`)
	booleanPattern   = regexp.MustCompile(`^(?i:true|false)$`)
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z?`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Classify maps a raw string value to its primitive semantic kind. First
// match wins: integer, float, boolean, timestamp, then text.
func Classify(value string) models.FieldKind {
	switch {
	case integerPattern.MatchString(value):
		return models.KindInteger
	case floatPattern.MatchString(value):
		return models.KindFloat
	case booleanPattern.MatchString(value):
		return models.KindBoolean
	case timestampPattern.MatchString(value):
		return models.KindTimestamp
	default:
		return models.KindText
	}
}

// Coerce converts a raw string value into the Go value matching its
// classification. Values that classify as timestamp but fail to parse are
// kept as text rather than dropped.
func Coerce(value string) interface{} {
	switch Classify(value) {
	case models.KindInteger:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		return value
	case models.KindFloat:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	case models.KindBoolean:
		b, _ := strconv.ParseBool(normalizeBool(value))
		return b
	case models.KindTimestamp:
		if ts, ok := parseTimestamp(value); ok {
			return ts
		}
		return value
	default:
		return value
	}
}

func normalizeBool(value string) string {
	// ParseBool accepts "true"/"TRUE" but not "True" followed by others;
	// lower-casing keeps the case-insensitive contract of the pattern.
	b := make([]byte, len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

func parseTimestamp(value string) (time.Time, bool) {
	// The pattern is substring-permissive, so parse the matched portion, not
	// the whole value.
	match := timestampPattern.FindString(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, match); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
