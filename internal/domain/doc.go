// Package domain models per-country COVID-19 time series and the severity
// signals derived from them for map markers.
//
// # Data Source
//
// The dataset is the daily-updated JSON published at
// https://pomber.github.io/covid19/timeseries.json. It is an object keyed by
// country name; each value is an array of daily records ordered by date:
//
//	{"Italy": [{"date": "2020-2-24", "confirmed": 229, "deaths": 7, "recovered": 1}, ...]}
//
// # Date Conventions
//
// Record dates use a loose "YYYY-M-D" format. Month and day are not
// zero-padded ("2020-2-8"), though padded values ("2020-02-08") are accepted.
// Dates are compared as calendar days (year, month, day); there is no time of
// day and no time zone. The reference "today" is always supplied by the
// caller, and its own location decides which calendar day it falls on.
//
// A day with no record yields the zero triple rather than an error, so a
// series that does not reach back far enough simply reports zero counts.
//
// # Derived Values
//
// Infected is confirmed - deaths - recovered and is never stored. Upstream
// data is trusted: deaths + recovered <= confirmed is assumed, not checked.
//
// Week-over-week percentages divide the prior count by the latest count. A
// zero latest count makes the percentage unavailable, which is reported
// explicitly and rendered as "n/a".
//
// # Marker Colors
//
// Countries without any data are drawn in [NeutralGray]. Countries with data
// are drawn in the midpoint between white and black. The contained/active
// classification is computed and exposed in stats, but it does not select
// the marker color. See [SeverityColor].
package domain
