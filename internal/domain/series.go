package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is a calendar day with no time-of-day or zone component.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day t falls on in t's own location.
func DayOf(t time.Time) Day {
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDay parses the dataset's loose "YYYY-M-D" date format. Zero padding is
// optional. Returns false for anything that is not a real calendar day.
func ParseDay(s string) (Day, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Day{}, false
	}

	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return Day{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Day{}, false
	}

	d := Day{Year: year, Month: time.Month(month), Day: day}
	// time.Date normalizes overflow (Feb 30 -> Mar 1), so a round trip
	// rejects days that do not exist.
	if DayOf(d.Time()) != d {
		return Day{}, false
	}
	return d, true
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// String formats the day the way the dataset does, e.g. "2020-2-8".
func (d Day) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, int(d.Month), d.Day)
}

// DailyRecord is one day of counts for a country as published by the dataset.
type DailyRecord struct {
	Date      string `json:"date"`
	Confirmed int64  `json:"confirmed"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
}

// Day parses the record's date. Malformed dates report false.
func (r DailyRecord) Day() (Day, bool) {
	return ParseDay(r.Date)
}

// Triple extracts the record's counts.
func (r DailyRecord) Triple() SeverityTriple {
	return SeverityTriple{Confirmed: r.Confirmed, Deaths: r.Deaths, Recovered: r.Recovered}
}

// CountrySeries is a country's records in ascending date order.
type CountrySeries []DailyRecord

// SeverityTriple holds the confirmed, deaths and recovered counts for one day.
type SeverityTriple struct {
	Confirmed int64 `json:"confirmed"`
	Deaths    int64 `json:"deaths"`
	Recovered int64 `json:"recovered"`
}

// Infected returns confirmed - deaths - recovered.
func (t SeverityTriple) Infected() int64 {
	return t.Confirmed - t.Deaths - t.Recovered
}

// IsZero reports whether all three counts are zero.
func (t SeverityTriple) IsZero() bool {
	return t == SeverityTriple{}
}

// FindCounts returns the counts recorded daysAgo days before the calendar day
// of ref. The whole series is scanned and the first record on the target day
// wins. When no record matches, including for an empty series or malformed
// dates, the zero triple is returned.
func FindCounts(series CountrySeries, ref time.Time, daysAgo int) SeverityTriple {
	target := DayOf(ref).AddDays(-daysAgo)
	for _, rec := range series {
		if d, ok := rec.Day(); ok && d == target {
			return rec.Triple()
		}
	}
	return SeverityTriple{}
}

// SeriesIndex maps calendar days to counts for constant-time lookups. It
// answers exactly what FindCounts would for the same series.
type SeriesIndex map[Day]SeverityTriple

// NewSeriesIndex indexes a series by day. Records with malformed dates are
// skipped, and the first record seen for a day is kept.
func NewSeriesIndex(series CountrySeries) SeriesIndex {
	idx := make(SeriesIndex, len(series))
	for _, rec := range series {
		d, ok := rec.Day()
		if !ok {
			continue
		}
		if _, seen := idx[d]; seen {
			continue
		}
		idx[d] = rec.Triple()
	}
	return idx
}

// Counts returns the counts daysAgo days before ref's calendar day, or the
// zero triple when that day is not indexed.
func (idx SeriesIndex) Counts(ref time.Time, daysAgo int) SeverityTriple {
	return idx[DayOf(ref).AddDays(-daysAgo)]
}

// MarshalText encodes the day in the dataset's "YYYY-M-D" format.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a "YYYY-M-D" day.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, ok := ParseDay(string(text))
	if !ok {
		return fmt.Errorf("parse day %q: not a calendar day", text)
	}
	*d = parsed
	return nil
}
