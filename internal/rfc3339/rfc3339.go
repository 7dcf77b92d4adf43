// Package rfc3339 parses and formats the restricted RFC3339 date-time grammar
// used on the wire:
//
//	YYYY-MM-DD(T|t)hh:mm:ss[.f+](Z|z|+hh:mm|-hh:mm)
//
// Fractions are truncated to microseconds (floor(frac*1e6)). A seconds value
// of 60 is clamped to 59 rather than rolled into the next minute. Offsets
// become fixed zones; no named time zone is ever attached.
package rfc3339

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	// ErrGrammar reports input that does not match the grammar at all.
	ErrGrammar = errors.New("rfc3339: invalid date/time")
	// ErrRange reports a well-formed input with a field out of range
	// (offset minutes outside 0..59, month 13, Feb 30, ...).
	ErrRange = errors.New("rfc3339: field out of range")
)

const microsPerSecond = 1_000_000

// Parse decodes s. clamped reports that a leap second (:60) was folded to :59.
func Parse(s string) (t time.Time, clamped bool, err error) {
	// fixed prefix: YYYY-MM-DDThh:mm:ss
	const prefix = 19
	if len(s) < prefix+1 {
		return time.Time{}, false, grammarErr(s)
	}
	if s[4] != '-' || s[7] != '-' || (s[10] != 'T' && s[10] != 't') || s[13] != ':' || s[16] != ':' {
		return time.Time{}, false, grammarErr(s)
	}
	year, ok1 := digits(s[0:4])
	month, ok2 := digits(s[5:7])
	day, ok3 := digits(s[8:10])
	hour, ok4 := digits(s[11:13])
	minute, ok5 := digits(s[14:16])
	second, ok6 := digits(s[17:19])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return time.Time{}, false, grammarErr(s)
	}

	off := prefix
	micros := 0
	if s[off] == '.' {
		end := off + 1
		for end < len(s) && isDigit(s[end]) {
			end++
		}
		if end == off+1 {
			return time.Time{}, false, grammarErr(s)
		}
		frac, err := strconv.ParseFloat("0"+s[off:end], 64)
		if err != nil {
			return time.Time{}, false, grammarErr(s)
		}
		micros = int(math.Floor(frac * microsPerSecond))
		off = end
	}

	var loc *time.Location
	switch rest := s[off:]; {
	case rest == "Z" || rest == "z":
		loc = time.UTC
	case len(rest) == 6 && (rest[0] == '+' || rest[0] == '-') && rest[3] == ':':
		oh, okh := digits(rest[1:3])
		om, okm := digits(rest[4:6])
		if !okh || !okm {
			return time.Time{}, false, grammarErr(s)
		}
		if om > 59 {
			return time.Time{}, false, fmt.Errorf("%w: minute offset must be in 0..59, got %d", ErrRange, om)
		}
		if oh > 23 {
			return time.Time{}, false, fmt.Errorf("%w: hour offset must be in 0..23, got %d", ErrRange, oh)
		}
		secs := oh*3600 + om*60
		if rest[0] == '-' {
			secs = -secs
		}
		loc = time.FixedZone("", secs)
	default:
		return time.Time{}, false, grammarErr(s)
	}

	if second == 60 {
		second = 59
		clamped = true
	}
	if err := checkRange(year, month, day, hour, minute, second, micros); err != nil {
		return time.Time{}, false, err
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, loc), clamped, nil
}

// Format renders t in the same grammar. Seconds and an offset are always
// present; microseconds are written only when non-zero and a zero offset is
// written as Z. Sub-microsecond precision is dropped.
func Format(t time.Time) string {
	buf := make([]byte, 0, len("2006-01-02T15:04:05.000000+00:00"))
	buf = t.AppendFormat(buf, "2006-01-02T15:04:05")
	if us := t.Nanosecond() / 1000; us != 0 {
		buf = append(buf, '.')
		buf = appendPadded(buf, us, 6)
	}
	_, secs := t.Zone()
	if secs == 0 {
		return string(append(buf, 'Z'))
	}
	sign := byte('+')
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	mins := secs / 60
	buf = append(buf, sign)
	buf = appendPadded(buf, mins/60, 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, mins%60, 2)
	return string(buf)
}

func checkRange(year, month, day, hour, minute, second, micros int) error {
	switch {
	case year < 1:
		return fmt.Errorf("%w: year %d", ErrRange, year)
	case month < 1 || month > 12:
		return fmt.Errorf("%w: month %d", ErrRange, month)
	case day < 1 || day > daysIn(year, month):
		return fmt.Errorf("%w: day %d", ErrRange, day)
	case hour > 23:
		return fmt.Errorf("%w: hour %d", ErrRange, hour)
	case minute > 59:
		return fmt.Errorf("%w: minute %d", ErrRange, minute)
	case second > 59:
		return fmt.Errorf("%w: second %d", ErrRange, second)
	case micros >= microsPerSecond:
		return fmt.Errorf("%w: fraction rounds to a full second", ErrRange)
	}
	return nil
}

func daysIn(year, month int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func appendPadded(buf []byte, n, width int) []byte {
	var tmp [8]byte
	i := len(tmp)
	for ; width > 0 || n > 0; width-- {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(buf, tmp[i:]...)
}

func grammarErr(s string) error {
	return fmt.Errorf("%w: %q", ErrGrammar, s)
}
