package models

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Gas is a SMEAR gas kind
type Gas string

const (
	GasCO2 Gas = "CO2"
	GasSO2 Gas = "SO2"
	GasNO  Gas = "NO"
)

// AllGases lists every supported gas in display order
var AllGases = []Gas{GasCO2, GasSO2, GasNO}

// Code returns the key used for the gas in the station registry
func (g Gas) Code() string {
	return string(g)
}

// ParseGas resolves a user-facing gas name
func ParseGas(name string) (Gas, error) {
	for _, g := range AllGases {
		if strings.EqualFold(name, string(g)) {
			return g, nil
		}
	}
	return "", &ValidationError{
		Field:   "gas",
		Value:   name,
		Message: fmt.Sprintf("unknown gas %q, expected one of CO2, SO2, NO", name),
	}
}

// Aggregation is the SMEAR server-side aggregation method
type Aggregation string

const (
	AggregationNone Aggregation = "NONE"
	AggregationMin  Aggregation = "MIN"
	AggregationMax  Aggregation = "MAX"
	AggregationAvg  Aggregation = "AVG"
)

// Code returns the value sent to the SMEAR API
func (a Aggregation) Code() string {
	if a == AggregationAvg {
		return "ARITHMETIC"
	}
	return string(a)
}

// ParseAggregation accepts the user-facing name (NONE, MIN, MAX, AVG) or the provider code
func ParseAggregation(name string) (Aggregation, error) {
	switch strings.ToUpper(name) {
	case "NONE", "":
		return AggregationNone, nil
	case "MIN":
		return AggregationMin, nil
	case "MAX":
		return AggregationMax, nil
	case "AVG", "ARITHMETIC":
		return AggregationAvg, nil
	}
	return "", &ValidationError{
		Field:   "aggregation",
		Value:   name,
		Message: fmt.Sprintf("unknown aggregation %q, expected NONE, MIN, MAX or AVG", name),
	}
}

// PlotType is the STATFI chart style requested by the caller
type PlotType string

const (
	PlotTypeLine PlotType = "LINE"
	PlotTypeBar  PlotType = "BAR"
)

// Code returns the plot type's wire value
func (p PlotType) Code() string {
	return string(p)
}

// ParsePlotType accepts LINE or BAR; empty defaults to LINE
func ParsePlotType(name string) (PlotType, error) {
	switch strings.ToUpper(name) {
	case "", "LINE", "LINE_GRAPH":
		return PlotTypeLine, nil
	case "BAR", "BAR_CHART":
		return PlotTypeBar, nil
	}
	return "", &ValidationError{
		Field:   "plot_type",
		Value:   name,
		Message: fmt.Sprintf("unknown plot type %q, expected LINE or BAR", name),
	}
}

// DefaultInterval is the SMEAR sampling interval in minutes
const DefaultInterval = "60"

// SMEAROptions describes one SMEAR time series request.
// Provider table and variable names are derived once at construction.
type SMEAROptions struct {
	Gas         Gas         `json:"gas"`
	Aggregation Aggregation `json:"aggregation_method"`
	Start       time.Time   `json:"start_date_time"`
	End         time.Time   `json:"end_date_time"`
	Stations    []string    `json:"stations"`
	Interval    string      `json:"interval"`

	tableNames    []string
	variableNames []string
}

// NewSMEAROptions builds options and resolves every station through the registry
func NewSMEAROptions(registry *StationRegistry, gas Gas, aggregation Aggregation, start, end time.Time, stations []string, interval string) (*SMEAROptions, error) {
	interval, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	opts := &SMEAROptions{
		Gas:           gas,
		Aggregation:   aggregation,
		Start:         start,
		End:           end,
		Stations:      append([]string(nil), stations...),
		Interval:      interval,
		tableNames:    make([]string, 0, len(stations)),
		variableNames: make([]string, 0, len(stations)),
	}

	for _, station := range stations {
		gv, err := registry.Lookup(station, gas)
		if err != nil {
			return nil, err
		}
		opts.tableNames = append(opts.tableNames, gv.Table)
		opts.variableNames = append(opts.variableNames, gv.Variable)
	}

	return opts, nil
}

// TableNames returns the provider tables, parallel to Stations
func (o *SMEAROptions) TableNames() []string {
	return append([]string(nil), o.tableNames...)
}

// VariableNames returns the provider variables, parallel to Stations
func (o *SMEAROptions) VariableNames() []string {
	return append([]string(nil), o.variableNames...)
}

// TableVariables returns "TABLE.variable" identifiers, parallel to Stations
func (o *SMEAROptions) TableVariables() []string {
	out := make([]string, len(o.tableNames))
	for i := range o.tableNames {
		out[i] = o.tableNames[i] + "." + o.variableNames[i]
	}
	return out
}

// STATFIOptions describes one STATFI figures request.
// Provider figure ids are derived once at construction.
type STATFIOptions struct {
	FigureNames []string `json:"figure_names"`
	Years       []string `json:"years"`
	PlotType    PlotType `json:"plot_type"`

	figureIDs []string
}

// NewSTATFIOptions builds options and resolves every label through the registry
func NewSTATFIOptions(registry *FigureRegistry, figureNames, years []string, plotType PlotType) (*STATFIOptions, error) {
	if plotType == "" {
		plotType = PlotTypeLine
	}

	opts := &STATFIOptions{
		FigureNames: append([]string(nil), figureNames...),
		Years:       append([]string(nil), years...),
		PlotType:    plotType,
		figureIDs:   make([]string, 0, len(figureNames)),
	}

	for _, name := range figureNames {
		code, err := registry.Code(name)
		if err != nil {
			return nil, err
		}
		opts.figureIDs = append(opts.figureIDs, code)
	}

	return opts, nil
}

// FigureIDs returns the provider codes, parallel to FigureNames
func (o *STATFIOptions) FigureIDs() []string {
	return append([]string(nil), o.figureIDs...)
}

// CompareOptions bundles the STATFI and SMEAR halves of a comparison.
// Nothing is derived at construction.
type CompareOptions struct {
	STATFIFigureNames []string `json:"statfi_figure_names"`
	STATFIYears       []string `json:"statfi_years"`
	SMEARGas          Gas      `json:"smear_gas"`
	SMEARStations     []string `json:"smear_stations"`
	SMEARYears        []string `json:"smear_years"`
}

// IsComplete reports whether every list needed for a comparison is non-empty
func (o CompareOptions) IsComplete() bool {
	return len(o.STATFIFigureNames) > 0 &&
		len(o.STATFIYears) > 0 &&
		len(o.SMEARStations) > 0 &&
		len(o.SMEARYears) > 0
}

// AppliedOptions remembers the last option object that was applied
// successfully; it is the rollback target of a reset.
type AppliedOptions[T any] struct {
	mu      sync.RWMutex
	last    T
	applied bool
}

// Apply records opts as the last-applied options
func (a *AppliedOptions[T]) Apply(opts T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = opts
	a.applied = true
}

// Last returns the last-applied options, ok is false if nothing was applied yet
func (a *AppliedOptions[T]) Last() (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.applied
}
