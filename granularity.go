/*
Copyright © 2020 the geodata authors.
This file is part of geodata.

geodata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geodata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geodata.  If not, see <http://www.gnu.org/licenses/>.
*/

package geodata

import "time"

// FileGranularity declares how a dataset variant splits its data across
// files, and therefore the temporal key shape used to enumerate the
// expected artifacts and the number of source locations per artifact.
type FileGranularity string

const (
	// GranularityDaily is one file per calendar day, one source URL.
	GranularityDaily FileGranularity = "daily"
	// GranularityDailyMultiple is one file per calendar day assembled
	// from two source URLs.
	GranularityDailyMultiple FileGranularity = "daily_multiple"
	// GranularityMonthly is one file per month. The source is either a
	// single templated URL or, for API-driven variants, a request built
	// by the acquisition routine from the bare (year, month) key.
	GranularityMonthly FileGranularity = "monthly"
	// GranularityMonthlyMultiple is one file per month assembled from
	// two source URLs.
	GranularityMonthlyMultiple FileGranularity = "monthly_multiple"
	// GranularityYearlyStatic is one non-time-indexed file per year,
	// retrieved by spatial query (land-cover bands). Months are ignored.
	GranularityYearlyStatic FileGranularity = "yearly_static"
)

// Valid reports whether g is one of the five supported granularities.
func (g FileGranularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityDailyMultiple, GranularityMonthly,
		GranularityMonthlyMultiple, GranularityYearlyStatic:
		return true
	}
	return false
}

// multiple reports whether each artifact maps to two source URLs.
func (g FileGranularity) multiple() bool {
	return g == GranularityDailyMultiple || g == GranularityMonthlyMultiple
}

// A Range is a (start, stop, step) year or month specification. Expansion
// is inclusive of Stop: Start, Start+Step, …, ≤ Stop. A zero Step counts
// as 1. The inclusive-stop behavior is a deliberate contract: a request
// for years {2011, 2016} means 2011 through 2016.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// Expand returns the values of the range in increasing order. A negative
// Step expands to nothing; ranges only count upward.
func (r Range) Expand() []int {
	step := r.Step
	if step < 0 {
		return nil
	}
	if step == 0 {
		step = 1
	}
	var vals []int
	for v := r.Start; v <= r.Stop; v += step {
		vals = append(vals, v)
	}
	return vals
}

// daysInMonth returns the number of calendar days in the given month,
// accounting for leap years.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// enumerateKeys lists the temporal keys of every artifact expected for the
// given granularity and time range, ordered year-major, month-minor,
// day-innermost. The result is a deterministic function of its arguments.
func enumerateKeys(g FileGranularity, years, months Range) []TemporalKey {
	var keys []TemporalKey
	switch g {
	case GranularityDaily, GranularityDailyMultiple:
		for _, yr := range years.Expand() {
			for _, mo := range months.Expand() {
				for day := 1; day <= daysInMonth(yr, mo); day++ {
					keys = append(keys, TemporalKey{Year: yr, Month: mo, Day: day})
				}
			}
		}
	case GranularityMonthly, GranularityMonthlyMultiple:
		for _, yr := range years.Expand() {
			for _, mo := range months.Expand() {
				keys = append(keys, TemporalKey{Year: yr, Month: mo})
			}
		}
	case GranularityYearlyStatic:
		for _, yr := range years.Expand() {
			keys = append(keys, TemporalKey{Year: yr})
		}
	}
	return keys
}
