package gosfs

import (
	"fmt"
	"time"
)

// NewTimestamp converts t into the on-disk wall clock representation.
// The fields are taken in t's own location, so callers decide whether an
// image stores local time (like the C disk tools) or UTC.
//
// Years outside of 0 - 65535 are clamped.
func NewTimestamp(t time.Time) Timestamp {
	year := t.Year()
	switch {
	case year < 0:
		year = 0
	case year > 0xFFFF:
		year = 0xFFFF
	}

	return Timestamp{
		Year:   uint16(year),
		Month:  uint8(t.Month()),
		Day:    uint8(t.Day()),
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
	}
}

// Time returns the timestamp as time.Time in loc.
//
// As month and day 0 are invalid, time.Time{} is returned for them to stay
// compatible with time.Time.IsZero().
// Out of range hours, minutes and seconds are normalized by time.Date.
func (ts Timestamp) Time(loc *time.Location) time.Time {
	if ts.Month == 0 || ts.Month > 12 || ts.Day == 0 {
		return time.Time{}
	}

	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day), int(ts.Hour), int(ts.Minute), int(ts.Second), 0, loc)
}

// String formats the timestamp the way directory listings print it.
func (ts Timestamp) String() string {
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d:%02d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
}
