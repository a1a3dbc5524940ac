package models

import (
	"encoding/json"
	"math"
)

// Missing is the sentinel stored for a year with no reported value
var Missing = math.NaN()

// IsMissing reports whether v is the missing sentinel
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Figure is one STATFI indicator ("Tiedot") whose values span several years
type Figure struct {
	nameValue  string
	nameText   string
	years      []int
	yearlyData map[int]float64
}

// NewFigure creates a figure with every year pre-set to Missing
func NewFigure(nameValue string, years []int) *Figure {
	f := &Figure{
		nameValue:  nameValue,
		years:      make([]int, 0, len(years)),
		yearlyData: make(map[int]float64, len(years)),
	}
	for _, year := range years {
		if _, seen := f.yearlyData[year]; !seen {
			f.years = append(f.years, year)
		}
		f.yearlyData[year] = Missing
	}
	return f
}

// SetYearlyData stores the value for a year.
// A null or zero value is stored as Missing: a genuine zero cannot be told
// apart from "not reported". Years outside the seeded set are appended.
func (f *Figure) SetYearlyData(year int, value *float64) {
	v := Missing
	if value != nil && *value != 0 {
		v = *value
	}
	if _, seen := f.yearlyData[year]; !seen {
		f.years = append(f.years, year)
	}
	f.yearlyData[year] = v
}

// SetNameText sets the display label
func (f *Figure) SetNameText(nameText string) {
	f.nameText = nameText
}

// NameValue returns the provider code
func (f *Figure) NameValue() string {
	return f.nameValue
}

// NameText returns the display label
func (f *Figure) NameText() string {
	return f.nameText
}

// Years returns the years in seeding order
func (f *Figure) Years() []int {
	out := make([]int, len(f.years))
	copy(out, f.years)
	return out
}

// YearlyData returns a copy of the year → value mapping
func (f *Figure) YearlyData() map[int]float64 {
	out := make(map[int]float64, len(f.yearlyData))
	for k, v := range f.yearlyData {
		out[k] = v
	}
	return out
}

// Value returns the value for a year; ok is false when it is missing or unknown
func (f *Figure) Value(year int) (float64, bool) {
	v, exists := f.yearlyData[year]
	if !exists || IsMissing(v) {
		return 0, false
	}
	return v, true
}

// YearValue is one entry of a figure's JSON encoding
type YearValue struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// MarshalJSON encodes missing values as null
func (f *Figure) MarshalJSON() ([]byte, error) {
	values := make([]YearValue, 0, len(f.years))
	for _, year := range f.years {
		entry := YearValue{Year: year}
		if v, ok := f.Value(year); ok {
			entry.Value = &v
		}
		values = append(values, entry)
	}

	return json.Marshal(struct {
		NameValue  string      `json:"name_value"`
		NameText   string      `json:"name_text"`
		YearlyData []YearValue `json:"yearly_data"`
	}{
		NameValue:  f.nameValue,
		NameText:   f.nameText,
		YearlyData: values,
	})
}
