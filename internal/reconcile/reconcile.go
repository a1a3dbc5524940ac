// Package reconcile aligns annual STATFI figures with SMEAR station series.
//
// Two alignments exist. A Breakdown overlays every raw SMEAR sample and
// places each year's figure value at the temporal midpoint of that year's
// observations. A YearlyAverage collapses each station to one mean per year
// and keeps the figures on their integer year axis. Reconcile picks the
// Breakdown whenever the data allows it and falls back to the YearlyAverage
// otherwise; ineligibility is never an error.
package reconcile

import (
	"encoding/json"
	"time"

	"gonum.org/v1/gonum/stat"

	"climate-compare/internal/models"
)

// Mode names an alignment
type Mode string

const (
	ModeBreakdown     Mode = "breakdown"
	ModeYearlyAverage Mode = "yearly_average"
)

// Alignment is the result of a reconciliation: *Breakdown or *YearlyAverage
type Alignment interface {
	Mode() Mode
}

// TimePoint is one SMEAR sample on the timestamp axis
type TimePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// StationSeries is a station's samples across every requested year
type StationSeries struct {
	Station string      `json:"station"`
	Points  []TimePoint `json:"points"`
}

// FigureTimePoint is a figure's value for a year placed at that year's midpoint.
// Value is nil when the year is missing.
type FigureTimePoint struct {
	Year  int       `json:"year"`
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"`
}

// FigureTimeSeries is one figure on the timestamp axis
type FigureTimeSeries struct {
	NameValue string            `json:"name_value"`
	NameText  string            `json:"name_text"`
	Points    []FigureTimePoint `json:"points"`
}

// Breakdown is the fine-grained alignment
type Breakdown struct {
	Midpoints []time.Time        `json:"midpoints"`
	Stations  []StationSeries    `json:"stations"`
	Figures   []FigureTimeSeries `json:"figures"`
}

// Mode returns ModeBreakdown
func (b *Breakdown) Mode() Mode {
	return ModeBreakdown
}

// MarshalJSON adds the mode tag to the encoding
func (b *Breakdown) MarshalJSON() ([]byte, error) {
	type alias Breakdown
	return json.Marshal(struct {
		Mode Mode `json:"mode"`
		*alias
	}{Mode: b.Mode(), alias: (*alias)(b)})
}

// YearPoint is one value on the integer year axis.
// Value is nil when the year is missing.
type YearPoint struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// StationYearly is a station's yearly means; years without samples have no point
type StationYearly struct {
	Station string      `json:"station"`
	Points  []YearPoint `json:"points"`
}

// FigureYearly is one figure on the integer year axis
type FigureYearly struct {
	NameValue string      `json:"name_value"`
	NameText  string      `json:"name_text"`
	Points    []YearPoint `json:"points"`
}

// YearlyAverage is the coarse alignment
type YearlyAverage struct {
	Stations []StationYearly `json:"stations"`
	Figures  []FigureYearly  `json:"figures"`
}

// Mode returns ModeYearlyAverage
func (y *YearlyAverage) Mode() Mode {
	return ModeYearlyAverage
}

// MarshalJSON adds the mode tag to the encoding
func (y *YearlyAverage) MarshalJSON() ([]byte, error) {
	type alias YearlyAverage
	return json.Marshal(struct {
		Mode Mode `json:"mode"`
		*alias
	}{Mode: y.Mode(), alias: (*alias)(y)})
}

// IsBreakdownEligible reports whether the SMEAR buckets line up with the
// requested STATFI years: one bucket per year, consecutive ascending years,
// and every bucket holding data from its own year only.
func IsBreakdownEligible(statfiYears []int, smearByYear [][]*models.Station) bool {
	if len(smearByYear) != len(statfiYears) {
		return false
	}

	for i := 1; i < len(statfiYears); i++ {
		if statfiYears[i]-statfiYears[i-1] != 1 {
			return false
		}
	}

	for i, bucket := range smearByYear {
		withData := 0
		for _, station := range bucket {
			if !station.HasData() {
				continue
			}
			withData++
			if station.Timestamps[0].Year() != statfiYears[i] {
				return false
			}
		}
		if withData == 0 {
			return false
		}
	}

	return true
}

// Reconcile builds the finest alignment the data allows.
// The only errors are station registry misses.
func Reconcile(statfiYears []int, figures []*models.Figure, smearByYear [][]*models.Station, namer models.StationNamer) (Alignment, error) {
	if IsBreakdownEligible(statfiYears, smearByYear) {
		return buildBreakdown(statfiYears, figures, smearByYear, namer)
	}
	return buildYearlyAverage(statfiYears, figures, smearByYear, namer)
}

// seriesIndex keeps per-station series in first-appearance order
type seriesIndex[T any] struct {
	order []string
	items map[string]*T
}

func newSeriesIndex[T any]() *seriesIndex[T] {
	return &seriesIndex[T]{items: make(map[string]*T)}
}

func (s *seriesIndex[T]) get(name string, create func() *T) *T {
	item, ok := s.items[name]
	if !ok {
		item = create()
		s.items[name] = item
		s.order = append(s.order, name)
	}
	return item
}

func (s *seriesIndex[T]) values() []T {
	out := make([]T, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.items[name])
	}
	return out
}

func buildBreakdown(statfiYears []int, figures []*models.Figure, smearByYear [][]*models.Station, namer models.StationNamer) (*Breakdown, error) {
	series := newSeriesIndex[StationSeries]()
	midpoints := make([]time.Time, 0, len(statfiYears))

	for i, bucket := range smearByYear {
		year := statfiYears[i]
		// a bucket without samples keeps these seeds and lands mid-year
		minTS := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		maxTS := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

		for _, station := range bucket {
			name, err := namer.StationName(station.Identifier)
			if err != nil {
				return nil, err
			}

			s := series.get(name, func() *StationSeries {
				return &StationSeries{Station: name, Points: []TimePoint{}}
			})

			for j, ts := range station.Timestamps {
				s.Points = append(s.Points, TimePoint{Time: ts, Value: station.Concentrations[j]})
				if ts.Before(minTS) {
					minTS = ts
				}
				if ts.After(maxTS) {
					maxTS = ts
				}
			}
		}

		midpoints = append(midpoints, minTS.Add(maxTS.Sub(minTS)/2))
	}

	figureSeries := make([]FigureTimeSeries, 0, len(figures))
	for _, figure := range figures {
		fs := FigureTimeSeries{
			NameValue: figure.NameValue(),
			NameText:  figure.NameText(),
			Points:    make([]FigureTimePoint, 0, len(statfiYears)),
		}
		for i, year := range statfiYears {
			fs.Points = append(fs.Points, FigureTimePoint{
				Year:  year,
				Time:  midpoints[i],
				Value: figureValue(figure, year),
			})
		}
		figureSeries = append(figureSeries, fs)
	}

	return &Breakdown{
		Midpoints: midpoints,
		Stations:  series.values(),
		Figures:   figureSeries,
	}, nil
}

func buildYearlyAverage(statfiYears []int, figures []*models.Figure, smearByYear [][]*models.Station, namer models.StationNamer) (*YearlyAverage, error) {
	series := newSeriesIndex[StationYearly]()

	for _, bucket := range smearByYear {
		for _, station := range bucket {
			name, err := namer.StationName(station.Identifier)
			if err != nil {
				return nil, err
			}

			s := series.get(name, func() *StationYearly {
				return &StationYearly{Station: name, Points: []YearPoint{}}
			})

			if !station.HasData() {
				continue
			}
			mean := stat.Mean(station.Concentrations, nil)
			s.Points = append(s.Points, YearPoint{
				Year:  station.Timestamps[0].Year(),
				Value: &mean,
			})
		}
	}

	figureSeries := make([]FigureYearly, 0, len(figures))
	for _, figure := range figures {
		fy := FigureYearly{
			NameValue: figure.NameValue(),
			NameText:  figure.NameText(),
			Points:    make([]YearPoint, 0, len(statfiYears)),
		}
		for _, year := range statfiYears {
			fy.Points = append(fy.Points, YearPoint{Year: year, Value: figureValue(figure, year)})
		}
		figureSeries = append(figureSeries, fy)
	}

	return &YearlyAverage{
		Stations: series.values(),
		Figures:  figureSeries,
	}, nil
}

func figureValue(figure *models.Figure, year int) *float64 {
	v, ok := figure.Value(year)
	if !ok {
		return nil
	}
	return &v
}
