package factories

import (
	"testing"
	"time"
)

const smearSample = `{
	"columns": ["HYY_META.CO2icos168", "VAR_EDDY.av_c"],
	"data": [
		{"HYY_META.CO2icos168": 410.5, "VAR_EDDY.av_c": null, "samptime": "2020-01-01T00:00:00.000000"},
		{"HYY_META.CO2icos168": null, "VAR_EDDY.av_c": 412.0, "samptime": "2020-01-01T01:00:00.000000"},
		{"HYY_META.CO2icos168": 411.25, "samptime": "2020-01-01T02:00:00"},
		{"HYY_META.CO2icos168": 999, "VAR_EDDY.av_c": 999, "samptime": "not a time"}
	]
}`

func TestStationFactory_Build(t *testing.T) {
	stations, err := NewStationFactory().BuildFromJSON([]byte(smearSample))
	if err != nil {
		t.Fatalf("BuildFromJSON() error = %v", err)
	}

	if len(stations) != 2 {
		t.Fatalf("len(stations) = %d, want 2", len(stations))
	}

	tests := []struct {
		identifier string
		values     []float64
		hours      []int
	}{
		{identifier: "HYY_META.CO2icos168", values: []float64{410.5, 411.25}, hours: []int{0, 2}},
		{identifier: "VAR_EDDY.av_c", values: []float64{412.0}, hours: []int{1}},
	}

	for i, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			station := stations[i]
			if station.Identifier != tt.identifier {
				t.Errorf("Identifier = %v, want %v", station.Identifier, tt.identifier)
			}
			if len(station.Timestamps) != len(station.Concentrations) {
				t.Fatalf("len(Timestamps) = %d, len(Concentrations) = %d, want equal",
					len(station.Timestamps), len(station.Concentrations))
			}
			if len(station.Concentrations) != len(tt.values) {
				t.Fatalf("len(Concentrations) = %d, want %d", len(station.Concentrations), len(tt.values))
			}
			for j, want := range tt.values {
				if station.Concentrations[j] != want {
					t.Errorf("Concentrations[%d] = %v, want %v", j, station.Concentrations[j], want)
				}
				wantTS := time.Date(2020, 1, 1, tt.hours[j], 0, 0, 0, time.UTC)
				if !station.Timestamps[j].Equal(wantTS) {
					t.Errorf("Timestamps[%d] = %v, want %v", j, station.Timestamps[j], wantTS)
				}
			}
		})
	}
}

func TestStationFactory_KeepsEmptyStations(t *testing.T) {
	payload := `{"columns": ["KUM_META.NO"], "data": [{"KUM_META.NO": null, "samptime": "2020-01-01T00:00:00.000000"}]}`

	stations, err := NewStationFactory().BuildFromJSON([]byte(payload))
	if err != nil {
		t.Fatalf("BuildFromJSON() error = %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("len(stations) = %d, want 1", len(stations))
	}
	if stations[0].HasData() {
		t.Error("HasData() = true, want false for an all-null column")
	}
	if stations[0].Len() != 0 {
		t.Errorf("Len() = %d, want 0", stations[0].Len())
	}
}

func TestStationFactory_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty object", payload: `{}`},
		{name: "missing data", payload: `{"columns": ["A.b"]}`},
		{name: "missing columns", payload: `{"data": [{"A.b": 1, "samptime": "2020-01-01T00:00:00"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stations, err := NewStationFactory().BuildFromJSON([]byte(tt.payload))
			if err != nil {
				t.Fatalf("BuildFromJSON() error = %v", err)
			}
			if len(stations) != 0 {
				t.Errorf("len(stations) = %d, want 0", len(stations))
			}
		})
	}
}

func TestStationFactory_NilPayload(t *testing.T) {
	if got := NewStationFactory().Build(nil); len(got) != 0 {
		t.Errorf("Build(nil) returned %d stations, want 0", len(got))
	}
}
