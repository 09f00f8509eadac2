package view

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// Day is a calendar date in a fixed location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
	Loc   *time.Location
}

// ParseDay accepts "2006-01-02" or "2006/01/02".
func ParseDay(s string, loc *time.Location) (Day, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	tm, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DayOf(tm), nil
}

// DayOf returns the calendar day containing tm.
func DayOf(tm time.Time) Day {
	return Day{Year: tm.Year(), Month: tm.Month(), Day: tm.Day(), Loc: tm.Location()}
}

// Bounds returns 00:00:00 and 23:59:59 of the day as unix seconds.
func (d Day) Bounds() (start, end int64) {
	loc := d.Loc
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	last := time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, loc)
	return first.Unix(), last.Unix()
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
