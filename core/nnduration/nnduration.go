// Package nnduration provides JSON-compatible non-negative duration types.
package nnduration

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

func parse(input string, unit time.Duration) (value uint64, e error) {
	if d, e := time.ParseDuration(input); e == nil {
		return uint64(d / unit), nil
	}
	return strconv.ParseUint(input, 10, 64)
}

func parseJSON(ptr interface{}, p []byte, unit time.Duration) error {
	value, e := parse(strings.Trim(string(p), `"`), unit)
	reflect.ValueOf(ptr).Elem().SetUint(value)
	return e
}

// Milliseconds is a duration in milliseconds unit.
// In JSON it accepts either a non-negative integer or a duration string
// recognized by time.ParseDuration.
type Milliseconds uint64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Milliseconds) UnmarshalJSON(p []byte) error {
	return parseJSON(d, p, time.Millisecond)
}

// Duration converts to time.Duration.
func (d Milliseconds) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// DurationOr converts to time.Duration, but returns dflt (in milliseconds) if d is zero.
func (d Milliseconds) DurationOr(dflt Milliseconds) time.Duration {
	if d == 0 {
		d = dflt
	}
	return d.Duration()
}

// Nanoseconds is a duration in nanoseconds unit.
// In JSON it accepts either a non-negative integer or a duration string
// recognized by time.ParseDuration.
type Nanoseconds uint64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Nanoseconds) UnmarshalJSON(p []byte) error {
	return parseJSON(d, p, time.Nanosecond)
}

// Duration converts to time.Duration.
func (d Nanoseconds) Duration() time.Duration {
	return time.Duration(d) * time.Nanosecond
}

// DurationOr converts to time.Duration, but returns dflt (in nanoseconds) if d is zero.
func (d Nanoseconds) DurationOr(dflt Nanoseconds) time.Duration {
	if d == 0 {
		d = dflt
	}
	return d.Duration()
}
