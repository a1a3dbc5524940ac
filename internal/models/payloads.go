package models

import "encoding/json"

// SampleTimeKey is the row key holding a SMEAR sample's timestamp
const SampleTimeKey = "samptime"

// SMEARPayload is the decoded SMEAR timeseries response.
// Each row maps a "TABLE.variable" identifier to a number or null, plus samptime.
type SMEARPayload struct {
	Columns []string                     `json:"columns"`
	Data    []map[string]json.RawMessage `json:"data"`
}

// STATFI dimension keys
const (
	IndicatorDimension = "Tiedot"
	YearDimension      = "Vuosi"
)

// STATFIPayload is the decoded JSON-stat2 response of the PX-Web API
type STATFIPayload struct {
	Dimension map[string]Dimension `json:"dimension"`
	Value     []*float64           `json:"value"`
}

// Dimension is one JSON-stat2 dimension
type Dimension struct {
	Category *Category `json:"category"`
}

// Category maps dimension codes to positions and display labels
type Category struct {
	Index map[string]int    `json:"index"`
	Label map[string]string `json:"label"`
}

// VariableMetadata is the period covered by one SMEAR table variable
type VariableMetadata struct {
	TableVariable string  `json:"tablevariable,omitempty"`
	PeriodStart   *string `json:"periodStart"`
	PeriodEnd     *string `json:"periodEnd"`
}

// STATFIQuery is the PX-Web request body selecting figures and years
type STATFIQuery struct {
	Query    []STATFIQueryItem `json:"query"`
	Response STATFIResponse    `json:"response"`
}

// STATFIQueryItem filters one dimension
type STATFIQueryItem struct {
	Code      string          `json:"code"`
	Selection STATFISelection `json:"selection"`
}

// STATFISelection lists the selected codes of a dimension
type STATFISelection struct {
	Filter string   `json:"filter"`
	Values []string `json:"values"`
}

// STATFIResponse selects the response format
type STATFIResponse struct {
	Format string `json:"format"`
}
