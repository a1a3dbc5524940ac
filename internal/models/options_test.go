package models

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseGas(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Gas
		wantErr bool
	}{
		{name: "upper case", input: "CO2", want: GasCO2},
		{name: "lower case", input: "so2", want: GasSO2},
		{name: "mixed case", input: "No", want: GasNO},
		{name: "unknown gas", input: "CH4", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGas(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGas(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseGas(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAggregation_Code(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "NONE"},
		{input: "min", want: "MIN"},
		{input: "MAX", want: "MAX"},
		{input: "AVG", want: "ARITHMETIC"},
		{input: "ARITHMETIC", want: "ARITHMETIC"},
	}

	for _, tt := range tests {
		agg, err := ParseAggregation(tt.input)
		if err != nil {
			t.Fatalf("ParseAggregation(%q) error = %v", tt.input, err)
		}
		if got := agg.Code(); got != tt.want {
			t.Errorf("ParseAggregation(%q).Code() = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := ParseAggregation("median"); err == nil {
		t.Error("ParseAggregation(median) should fail")
	}
}

func TestParsePlotType(t *testing.T) {
	tests := []struct {
		input   string
		want    PlotType
		wantErr bool
	}{
		{input: "", want: PlotTypeLine},
		{input: "line_graph", want: PlotTypeLine},
		{input: "BAR", want: PlotTypeBar},
		{input: "bar_chart", want: PlotTypeBar},
		{input: "pie", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePlotType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePlotType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePlotType(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewSMEAROptions(t *testing.T) {
	registry := DefaultStationRegistry()
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2016, 12, 31, 23, 59, 59, 0, time.UTC)

	opts, err := NewSMEAROptions(registry, GasSO2, AggregationAvg, start, end, []string{"Kumpula", "Hyytiälä"}, "")
	if err != nil {
		t.Fatalf("NewSMEAROptions() error = %v", err)
	}

	if got, want := opts.TableNames(), []string{"KUM_META", "HYY_META"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TableNames() = %v, want %v", got, want)
	}
	if got, want := opts.VariableNames(), []string{"SO_2", "SO2168"}; !reflect.DeepEqual(got, want) {
		t.Errorf("VariableNames() = %v, want %v", got, want)
	}
	if got, want := opts.TableVariables(), []string{"KUM_META.SO_2", "HYY_META.SO2168"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TableVariables() = %v, want %v", got, want)
	}
	if opts.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", opts.Interval, DefaultInterval)
	}

	// derived lists are copies
	opts.TableNames()[0] = "changed"
	if opts.TableNames()[0] != "KUM_META" {
		t.Error("TableNames() exposes internal state")
	}
}

func TestNewSMEAROptions_Errors(t *testing.T) {
	registry := DefaultStationRegistry()
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		gas      Gas
		stations []string
		interval string
		wantKey  string
	}{
		{name: "unknown station", gas: GasCO2, stations: []string{"Nowhere"}, wantKey: "Nowhere"},
		{name: "gas not measured", gas: GasSO2, stations: []string{"Viikki"}, wantKey: "Viikki/SO2"},
		{name: "bad interval", gas: GasCO2, stations: []string{"Viikki"}, interval: "often"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSMEAROptions(registry, tt.gas, AggregationNone, start, start, tt.stations, tt.interval)
			if err == nil {
				t.Fatal("expected an error")
			}

			var regErr *RegistryError
			if tt.wantKey == "" {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("error = %T, want *ValidationError", err)
				}
				return
			}
			if !errors.As(err, &regErr) {
				t.Fatalf("error = %T, want *RegistryError", err)
			}
			if regErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", regErr.Key, tt.wantKey)
			}
		})
	}
}

func TestNewSTATFIOptions(t *testing.T) {
	registry := DefaultFigureRegistry()

	opts, err := NewSTATFIOptions(registry, []string{
		"Greenhouse gas emissions 2), CO2 equivalent 1000 t",
		"Intensity of greenhouse gas emissions",
	}, []string{"2015", "2016"}, "")
	if err != nil {
		t.Fatalf("NewSTATFIOptions() error = %v", err)
	}

	if got, want := opts.FigureIDs(), []string{"Khk_yht", "Khk_yht_las"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FigureIDs() = %v, want %v", got, want)
	}
	if opts.PlotType != PlotTypeLine {
		t.Errorf("PlotType = %v, want %v", opts.PlotType, PlotTypeLine)
	}

	_, err = NewSTATFIOptions(registry, []string{"Methane"}, []string{"2016"}, PlotTypeBar)
	var regErr *RegistryError
	if !errors.As(err, &regErr) || regErr.Registry != "figure" {
		t.Errorf("unknown label error = %v, want a figure RegistryError", err)
	}
}

func TestCompareOptions_IsComplete(t *testing.T) {
	full := CompareOptions{
		STATFIFigureNames: []string{"a"},
		STATFIYears:       []string{"2016"},
		SMEARGas:          GasCO2,
		SMEARStations:     []string{"Hyytiälä"},
		SMEARYears:        []string{"2016"},
	}
	if !full.IsComplete() {
		t.Error("IsComplete() = false for a full option set")
	}

	tests := []struct {
		name   string
		mutate func(*CompareOptions)
	}{
		{name: "no figures", mutate: func(o *CompareOptions) { o.STATFIFigureNames = nil }},
		{name: "no statfi years", mutate: func(o *CompareOptions) { o.STATFIYears = []string{} }},
		{name: "no stations", mutate: func(o *CompareOptions) { o.SMEARStations = nil }},
		{name: "no smear years", mutate: func(o *CompareOptions) { o.SMEARYears = nil }},
	}
	for _, tt := range tests {
		opts := full
		tt.mutate(&opts)
		if opts.IsComplete() {
			t.Errorf("%s: IsComplete() = true, want false", tt.name)
		}
	}
}

func TestAppliedOptions(t *testing.T) {
	var applied AppliedOptions[CompareOptions]

	if _, ok := applied.Last(); ok {
		t.Fatal("Last() reported options before any were applied")
	}

	first := CompareOptions{SMEARGas: GasCO2}
	second := CompareOptions{SMEARGas: GasNO}
	applied.Apply(first)
	applied.Apply(second)

	got, ok := applied.Last()
	if !ok || got.SMEARGas != GasNO {
		t.Errorf("Last() = %v, %v, want the second options", got, ok)
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: DefaultInterval},
		{input: "30", want: "30"},
		{input: " 60 ", want: "60"},
		{input: "PT1H", want: "60"},
		{input: "pt30m", want: "30"},
		{input: "P1D", want: "1440"},
		{input: "0", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "PT30S", wantErr: true},
		{input: "hourly", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseInterval(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseInterval(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseInterval(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
