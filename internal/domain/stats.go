package domain

import (
	"fmt"
	"time"
)

// DefaultLookbackDays is the comparison window used for week-over-week stats.
const DefaultLookbackDays = 7

// Percent is a rounded percentage that may be undefined (zero denominator).
type Percent struct {
	Value     int64 `json:"value"`
	Available bool  `json:"available"`
}

// NewPercent computes part as a rounded percentage of whole.
func NewPercent(part, whole int64) Percent {
	v, ok := Percentage(part, whole)
	return Percent{Value: v, Available: ok}
}

// String renders "42%" or "n/a".
func (p Percent) String() string {
	if !p.Available {
		return unavailable
	}
	return fmt.Sprintf("%d%%", p.Value)
}

// CountryStats compares a country's latest counts with the counts a lookback
// window earlier. Each percentage is prior*100/latest.
type CountryStats struct {
	Country        string         `json:"country"`
	ReferenceDay   Day            `json:"reference_day"`
	LookbackDays   int            `json:"lookback_days"`
	Latest         SeverityTriple `json:"latest"`
	Prior          SeverityTriple `json:"prior"`
	Infected       int64          `json:"infected"`
	PriorInfected  int64          `json:"prior_infected"`
	CasesPct       Percent        `json:"cases_pct"`
	DeathsPct      Percent        `json:"deaths_pct"`
	RecoveriesPct  Percent        `json:"recoveries_pct"`
	InfectedPct    Percent        `json:"infected_pct"`
	Classification Classification `json:"classification"`
	Color          Color          `json:"color"`
}

// FormattedCounts holds thousands-separated counts for display.
type FormattedCounts struct {
	Cases      string `json:"cases"`
	Infected   string `json:"infected"`
	Deaths     string `json:"deaths"`
	Recoveries string `json:"recoveries"`
}

// BuildCountryStats looks up the counts on ref's calendar day and lookback
// days earlier and derives the comparison percentages. Missing days count as
// zero, which can leave percentages unavailable.
func BuildCountryStats(country string, series CountrySeries, ref time.Time, lookback int) CountryStats {
	idx := NewSeriesIndex(series)
	latest := idx.Counts(ref, 0)
	prior := idx.Counts(ref, lookback)

	return CountryStats{
		Country:        country,
		ReferenceDay:   DayOf(ref),
		LookbackDays:   lookback,
		Latest:         latest,
		Prior:          prior,
		Infected:       latest.Infected(),
		PriorInfected:  prior.Infected(),
		CasesPct:       NewPercent(prior.Confirmed, latest.Confirmed),
		DeathsPct:      NewPercent(prior.Deaths, latest.Deaths),
		RecoveriesPct:  NewPercent(prior.Recovered, latest.Recovered),
		InfectedPct:    NewPercent(prior.Infected(), latest.Infected()),
		Classification: Classify(latest),
		Color:          SeverityColor(&latest),
	}
}

// Summary renders the one-line percentage summary shown in the stats bar.
func (s CountryStats) Summary() string {
	return fmt.Sprintf("Case percentage: %s Deaths percentage: %s Recoveries percentage: %s Infected percentage: %s",
		s.CasesPct, s.DeathsPct, s.RecoveriesPct, s.InfectedPct)
}

// Counts formats the latest counts with thousands separators.
func (s CountryStats) Counts() FormattedCounts {
	return FormattedCounts{
		Cases:      FormatThousands(s.Latest.Confirmed),
		Infected:   FormatThousands(s.Infected),
		Deaths:     FormatThousands(s.Latest.Deaths),
		Recoveries: FormatThousands(s.Latest.Recovered),
	}
}
