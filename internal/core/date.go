package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component. The canonical text
// form is YYYY-MM-DD. Ingestion checks shape only, so a Date may carry a
// value like month 13 that no real calendar month will ever match; such
// records still group correctly by their literal text in the daily summary.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate accepts exactly the shape 4 digits, '-', 2 digits, '-', 2
// digits. No calendar-validity check happens here.
func ParseDate(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, ErrInvalidDateFormat
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return Date{}, ErrInvalidDateFormat
		}
	}
	var d Date
	fmt.Sscanf(s, "%4d-%2d-%2d", &d.Year, &d.Month, &d.Day)
	return d, nil
}

// String renders the canonical zero-padded form, so lexicographic order of
// date strings is chronological order.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Validate checks that the date round-trips through its canonical form.
// All-zero dates pass: shape is the only rule, and 0000-00-00 has it.
func (d Date) Validate() error {
	if d.Year < 0 || d.Year > 9999 || d.Month < 0 || d.Month > 99 || d.Day < 0 || d.Day > 99 {
		return ErrInvalidDateFormat
	}
	return nil
}

// In reports whether the date falls in the given year and month.
func (d Date) In(year, month int) bool {
	return d.Year == year && d.Month == month
}

// MarshalJSON encodes the canonical YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the canonical string form.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysInMonth returns the day count of a proleptic Gregorian month, leap
// years included.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths steps year/month by delta whole months, wrapping year
// boundaries in both directions.
func AddMonths(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), int(t.Month())
}
