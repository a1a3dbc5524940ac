package factories

import (
	"encoding/json"
	"testing"

	"climate-compare/internal/models"
)

// value array deliberately lists the year index out of numeric order
const statfiSample = `{
	"dimension": {
		"Tiedot": {"category": {
			"index": {"Khk_yht": 1, "Khk_yht_index": 0},
			"label": {"Khk_yht": "Greenhouse gas emissions", "Khk_yht_index": "Indexed emissions"}
		}},
		"Vuosi": {"category": {
			"index": {"2015": 0, "2016": 1, "2017": 2},
			"label": {"2015": "2015", "2016": "2016", "2017": "2017"}
		}}
	},
	"value": [101.5, 98.25, null, 55000, 0, 53000]
}`

func TestFigureFactory_Build(t *testing.T) {
	figures, err := NewFigureFactory().BuildFromJSON([]byte(statfiSample))
	if err != nil {
		t.Fatalf("BuildFromJSON() error = %v", err)
	}

	if len(figures) != 2 {
		t.Fatalf("len(figures) = %d, want 2", len(figures))
	}

	tests := []struct {
		code  string
		label string
		want  map[int]*float64
	}{
		{
			code:  "Khk_yht_index",
			label: "Indexed emissions",
			want:  map[int]*float64{2015: ptr(101.5), 2016: ptr(98.25), 2017: nil},
		},
		{
			code:  "Khk_yht",
			label: "Greenhouse gas emissions",
			want:  map[int]*float64{2015: ptr(55000), 2016: nil, 2017: ptr(53000)},
		},
	}

	for i, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			figure := figures[i]
			if figure.NameValue() != tt.code {
				t.Errorf("NameValue() = %v, want %v", figure.NameValue(), tt.code)
			}
			if figure.NameText() != tt.label {
				t.Errorf("NameText() = %v, want %v", figure.NameText(), tt.label)
			}
			if len(figure.Years()) != 3 {
				t.Errorf("len(Years()) = %d, want 3", len(figure.Years()))
			}
			for year, want := range tt.want {
				got, ok := figure.Value(year)
				if want == nil {
					if ok {
						t.Errorf("Value(%d) = %v, want missing", year, got)
					}
					continue
				}
				if !ok || got != *want {
					t.Errorf("Value(%d) = %v, %v, want %v, true", year, got, ok, *want)
				}
			}
		})
	}
}

func TestFigureFactory_RoundTrip(t *testing.T) {
	var payload models.STATFIPayload
	if err := json.Unmarshal([]byte(statfiSample), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	figures := NewFigureFactory().Build(&payload)
	flat := Flatten(&payload, figures)

	if len(flat) != len(payload.Value) {
		t.Fatalf("len(Flatten()) = %d, want %d", len(flat), len(payload.Value))
	}
	for i, original := range payload.Value {
		// null and zero both round-trip as missing
		if original == nil || *original == 0 {
			if flat[i] != nil {
				t.Errorf("Flatten()[%d] = %v, want nil", i, *flat[i])
			}
			continue
		}
		if flat[i] == nil || *flat[i] != *original {
			t.Errorf("Flatten()[%d] = %v, want %v", i, flat[i], *original)
		}
	}
}

func TestFigureFactory_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty object", payload: `{}`},
		{name: "missing Vuosi", payload: `{"dimension": {"Tiedot": {"category": {"index": {"A": 0}, "label": {"A": "a"}}}}, "value": [1]}`},
		{name: "missing Tiedot", payload: `{"dimension": {"Vuosi": {"category": {"index": {"2015": 0}}}}, "value": [1]}`},
		{name: "missing label", payload: `{"dimension": {"Tiedot": {"category": {"index": {"A": 0}}}, "Vuosi": {"category": {"index": {"2015": 0}}}}, "value": [1]}`},
		{name: "non-integer year", payload: `{"dimension": {"Tiedot": {"category": {"index": {"A": 0}, "label": {"A": "a"}}}, "Vuosi": {"category": {"index": {"2015Q1": 0}}}}, "value": [1]}`},
		{name: "no years", payload: `{"dimension": {"Tiedot": {"category": {"index": {"A": 0}, "label": {"A": "a"}}}, "Vuosi": {"category": {"index": {}}}}, "value": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			figures, err := NewFigureFactory().BuildFromJSON([]byte(tt.payload))
			if err != nil {
				t.Fatalf("BuildFromJSON() error = %v", err)
			}
			if len(figures) != 0 {
				t.Errorf("len(figures) = %d, want 0", len(figures))
			}
		})
	}
}

func TestFigureFactory_ShortValueArray(t *testing.T) {
	payload := `{"dimension": {
		"Tiedot": {"category": {"index": {"A": 0, "B": 1}, "label": {"A": "a", "B": "b"}}},
		"Vuosi": {"category": {"index": {"2015": 0, "2016": 1}}}
	}, "value": [1, 2, 3]}`

	figures, err := NewFigureFactory().BuildFromJSON([]byte(payload))
	if err != nil {
		t.Fatalf("BuildFromJSON() error = %v", err)
	}
	if len(figures) != 2 {
		t.Fatalf("len(figures) = %d, want 2", len(figures))
	}
	if v, ok := figures[1].Value(2015); !ok || v != 3 {
		t.Errorf("B Value(2015) = %v, %v, want 3, true", v, ok)
	}
	if _, ok := figures[1].Value(2016); ok {
		t.Error("B Value(2016) present, want missing for an out-of-range position")
	}
}

func ptr(v float64) *float64 {
	return &v
}
