package model

import (
	"time"

	"github.com/OrPerets/proctorscan/internal/field"
)

// timestampLayouts are tried in order when parsing string timestamps.
// The export mixes full RFC3339 stamps with naive date-times written by
// older platform versions.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// millisThreshold separates epoch seconds from epoch milliseconds.
// Values above 1e12 (year 33658 in seconds) are taken as milliseconds.
const millisThreshold = 1e12

// NormalizeTimestamp converts a raw exported timestamp to a UTC time.Time.
//
// Numeric values are interpreted as epoch time, milliseconds when the
// magnitude exceeds 1e12, seconds otherwise. Strings are parsed as
// ISO-8601 with "Z" treated as the UTC offset. Values that cannot be
// parsed are returned unchanged rather than dropped, so reports always
// show the original evidence. Zero numbers, empty strings, and nil
// return nil.
func NormalizeTimestamp(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.UTC()
	case string:
		if t == "" {
			return nil
		}
		for _, layout := range timestampLayouts {
			parsed, err := time.Parse(layout, t)
			if err == nil {
				return parsed.UTC()
			}
		}
		return t
	default:
		f, ok := field.ParseFloat(v)
		if !ok {
			return v
		}
		if f == 0 {
			return nil
		}
		seconds := f
		if f > millisThreshold {
			seconds = f / 1000.0
		}
		sec := int64(seconds)
		nsec := int64((seconds - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC()
	}
}
