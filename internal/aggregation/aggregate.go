// Package aggregation reduces concentration series to min, max and mean.
// Every function is pure and safe for concurrent use.
package aggregation

import (
	"errors"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"climate-compare/internal/models"
)

var (
	// ErrEmptySeries signals that there was nothing to aggregate.
	// It is distinct from a legitimate zero aggregate.
	ErrEmptySeries = errors.New("no data to aggregate")

	// ErrMissingValue signals a missing (NaN) value inside a series
	ErrMissingValue = errors.New("series contains missing values")
)

// Summary is the min, max and arithmetic mean of a series
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Aggregate returns the min, max and mean of values
func Aggregate(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptySeries
	}
	if floats.HasNaN(values) {
		return Summary{}, ErrMissingValue
	}

	return Summary{
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Mean: stat.Mean(values, nil),
	}, nil
}

// dayBounds returns the closed interval [00:00:00, 23:59:59] of date's day
func dayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	end := time.Date(y, m, d, 23, 59, 59, 0, date.Location())
	return start, end
}

// ConcentrationsOnDate returns the samples taken on date's day, in arrival order.
// Samples are filtered one by one so out-of-order input never leaks samples
// from other days into the result.
func ConcentrationsOnDate(station *models.Station, date time.Time) []float64 {
	start, end := dayBounds(date)

	out := make([]float64, 0)
	for i, ts := range station.Timestamps {
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, station.Concentrations[i])
	}
	return out
}

// DailyAggregate aggregates the samples a station took on date's day
func DailyAggregate(station *models.Station, date time.Time) (Summary, error) {
	return Aggregate(ConcentrationsOnDate(station, date))
}

// StationDaily is one station's contribution to a cross-station reduction
type StationDaily struct {
	Station string  `json:"station"`
	Summary Summary `json:"summary"`
}

// DailyResult is the cross-station reduction for one day
type DailyResult struct {
	Date       time.Time      `json:"date"`
	Min        float64        `json:"min"`
	MinStation string         `json:"min_station"`
	Max        float64        `json:"max"`
	MaxStation string         `json:"max_station"`
	Mean       float64        `json:"mean"`
	Stations   []StationDaily `json:"stations"`
	Missing    []string       `json:"missing"`
}

// DailyAcrossStations reduces the daily aggregates of several stations.
//
// Stations without samples that day are excluded and listed in Missing. The
// extremes are attributed to the first station, in input order, whose own
// extreme matches. The mean is the mean of the per-station means. When every
// station is missing the result carries only Missing and ErrEmptySeries is
// returned.
func DailyAcrossStations(stations []*models.Station, date time.Time, namer models.StationNamer) (DailyResult, error) {
	result := DailyResult{
		Date:     date,
		Stations: make([]StationDaily, 0, len(stations)),
		Missing:  make([]string, 0),
	}

	for _, station := range stations {
		name, err := namer.StationName(station.Identifier)
		if err != nil {
			return DailyResult{}, err
		}

		summary, err := DailyAggregate(station, date)
		if errors.Is(err, ErrEmptySeries) {
			result.Missing = append(result.Missing, name)
			continue
		}
		if err != nil {
			return DailyResult{}, err
		}

		result.Stations = append(result.Stations, StationDaily{Station: name, Summary: summary})
	}

	if len(result.Stations) == 0 {
		return result, ErrEmptySeries
	}

	mins := make([]float64, len(result.Stations))
	maxs := make([]float64, len(result.Stations))
	means := make([]float64, len(result.Stations))
	for i, sd := range result.Stations {
		mins[i] = sd.Summary.Min
		maxs[i] = sd.Summary.Max
		means[i] = sd.Summary.Mean
	}

	// floats.MinIdx and MaxIdx return the lowest index on ties
	minIdx := floats.MinIdx(mins)
	maxIdx := floats.MaxIdx(maxs)

	result.Min = mins[minIdx]
	result.MinStation = result.Stations[minIdx].Station
	result.Max = maxs[maxIdx]
	result.MaxStation = result.Stations[maxIdx].Station
	result.Mean = stat.Mean(means, nil)

	return result, nil
}

// StationSummary is a station's aggregate over its whole series.
// Summary is nil when the station has no samples.
type StationSummary struct {
	Station    string   `json:"station"`
	Identifier string   `json:"identifier"`
	Samples    int      `json:"samples"`
	Summary    *Summary `json:"summary"`
}

// SummarizeStations aggregates each station's full series, sorted by station name
func SummarizeStations(stations []*models.Station, namer models.StationNamer) ([]StationSummary, error) {
	out := make([]StationSummary, 0, len(stations))

	for _, station := range stations {
		name, err := namer.StationName(station.Identifier)
		if err != nil {
			return nil, err
		}

		entry := StationSummary{
			Station:    name,
			Identifier: station.Identifier,
			Samples:    station.Len(),
		}

		summary, err := Aggregate(station.Concentrations)
		switch {
		case err == nil:
			entry.Summary = &summary
		case errors.Is(err, ErrEmptySeries):
		default:
			return nil, err
		}

		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Station < out[j].Station
	})

	return out, nil
}
