package calendar

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Layout is the wire and storage format of a Date.
const Layout = "2006-01-02"

// Date is a calendar day without a time component, formatted as YYYY-MM-DD.
// The fixed-width format makes lexical order equal to chronological order.
type Date string

// Parse accepts either YYYY-MM-DD or an RFC3339 timestamp. Timestamps are
// converted to the day they fall on in loc.
func Parse(value string, loc *time.Location) (Date, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(Layout, value, loc); err == nil {
		return Date(t.Format(Layout)), nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
	}
	return FromTime(t, loc), nil
}

// MustParse is Parse for literals in tests and seeds.
func MustParse(value string) Date {
	d, err := Parse(value, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the day t falls on in loc.
func FromTime(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc).Format(Layout))
}

// Today returns the current day in loc.
func Today(loc *time.Location) Date {
	return FromTime(time.Now(), loc)
}

func (d Date) String() string {
	return string(d)
}

// Valid reports whether d is a well-formed calendar day.
func (d Date) Valid() bool {
	_, err := time.Parse(Layout, string(d))
	return err == nil
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(Layout, string(d), loc)
}

// AddDays shifts d by n days. An invalid date is returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(Layout))
}

func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) After(other Date) bool {
	return d > other
}

// Within reports whether d lies in the inclusive range [start, end].
func (d Date) Within(start, end Date) bool {
	return d >= start && d <= end
}

// Span returns every day from start to end inclusive. It returns nil when
// end precedes start or either bound is malformed.
func Span(start, end Date) []Date {
	if !start.Valid() || !end.Valid() || end.Before(start) {
		return nil
	}

	var days []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Unique returns the distinct dates in ascending order.
func Unique(dates []Date) []Date {
	seen := make(map[Date]struct{}, len(dates))
	out := make([]Date, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether d is one of dates.
func Contains(dates []Date, d Date) bool {
	for _, candidate := range dates {
		if candidate == d {
			return true
		}
	}
	return false
}

// Strings converts dates to plain strings.
func Strings(dates []Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = string(d)
	}
	return out
}

// Scan implements sql.Scanner so a Date can be read from a Postgres date column.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.UTC().Format(Layout))
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanString(v string) error {
	if len(v) >= len(Layout) {
		v = v[:len(Layout)]
	}
	parsed, err := Parse(v, time.UTC)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}
