package core

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

const calendarDateLayout = "2006-01-02"

// ErrInvalidCalendarDate is returned for strings that do not start with a YYYY-MM-DD date.
var ErrInvalidCalendarDate = errors.New("invalid calendar date")

// CalendarDate is a year-month-day date without time of day or zone.
// Overdue and loan-length computations compare CalendarDates, never timestamps.
// The zero value means "no date".
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// NewCalendarDate builds a CalendarDate, normalizing overflowing values the way time.Date does.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{year: y, month: m, day: d}
}

// Today returns the calendar date of now in now's location.
func Today(now time.Time) CalendarDate {
	return DateOf(now)
}

// ParseCalendarDate parses "YYYY-MM-DD". Longer timestamps ("2024-01-15T00:00:00Z") are
// reduced to their date part as written, without converting zones.
func ParseCalendarDate(raw string) (CalendarDate, error) {
	if len(raw) > len(calendarDateLayout) {
		sep := raw[len(calendarDateLayout)]
		if sep != 'T' && sep != ' ' {
			return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
		}

		raw = raw[:len(calendarDateLayout)]
	}

	t, err := time.Parse(calendarDateLayout, raw)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
	}

	return DateOf(t), nil
}

// MustParseCalendarDate is ParseCalendarDate for literals; it panics on invalid input.
func MustParseCalendarDate(raw string) CalendarDate {
	d, err := ParseCalendarDate(raw)
	if err != nil {
		panic(err)
	}

	return d
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) Year() int           { return d.year }
func (d CalendarDate) Month() time.Month   { return d.month }
func (d CalendarDate) Day() int            { return d.day }
func (d CalendarDate) midnight() time.Time { return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC) }

func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}

	return d.midnight().Format(calendarDateLayout)
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.compare(other) < 0 }
func (d CalendarDate) After(other CalendarDate) bool  { return d.compare(other) > 0 }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.compare(other) == 0 }

func (d CalendarDate) compare(other CalendarDate) int {
	switch {
	case d.year != other.year:
		return d.year - other.year
	case d.month != other.month:
		return int(d.month) - int(other.month)
	default:
		return d.day - other.day
	}
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the number of calendar days from d to other (negative if other is earlier).
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int((other.midnight().Unix() - d.midnight().Unix()) / secondsPerDay)
}

// AddDays returns the date n calendar days after d.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when zero.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.String() + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = CalendarDate{}
		return nil
	}

	var s string
	if err := jsonAPI.Unmarshal(trimmed, &s); err != nil {
		return errors.Join(ErrInvalidCalendarDate, err)
	}

	if s == "" {
		*d = CalendarDate{}
		return nil
	}

	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
