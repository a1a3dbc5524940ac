package models

import (
	"time"
)

// SampleTimeLayout is the SMEAR "samptime" layout. The fractional part is optional.
const SampleTimeLayout = "2006-01-02T15:04:05.999999"

// Station is one SMEAR sensor's concentration series.
// Timestamps and Concentrations are parallel slices of equal length and never
// contain nulls; they are expected in arrival order but monotonicity is not enforced.
type Station struct {
	Identifier     string      `json:"identifier"`
	Timestamps     []time.Time `json:"timestamps"`
	Concentrations []float64   `json:"concentrations"`
}

// NewStation creates a station with no samples
func NewStation(identifier string) *Station {
	return &Station{
		Identifier:     identifier,
		Timestamps:     []time.Time{},
		Concentrations: []float64{},
	}
}

// AddSample appends one sample, keeping both slices in lockstep
func (s *Station) AddSample(ts time.Time, concentration float64) {
	s.Timestamps = append(s.Timestamps, ts)
	s.Concentrations = append(s.Concentrations, concentration)
}

// HasData reports whether the station holds at least one sample
func (s *Station) HasData() bool {
	return len(s.Concentrations) > 0
}

// Len returns the number of samples
func (s *Station) Len() int {
	return len(s.Timestamps)
}

// StationNamer resolves a provider identifier ("TABLE.variable") to a
// human-readable station name.
type StationNamer interface {
	StationName(identifier string) (string, error)
}
