package factories

import (
	"bytes"
	"encoding/json"
	"time"

	"climate-compare/internal/models"
)

var jsonNull = []byte("null")

// StationFactory turns SMEAR timeseries payloads into stations
type StationFactory struct{}

// NewStationFactory creates a new station factory
func NewStationFactory() *StationFactory {
	return &StationFactory{}
}

// Build returns one station per payload column, in column order.
// Rows whose value is null or absent are skipped for that station only, so
// a station may end up with no samples. A payload without columns or data
// yields an empty list.
func (f *StationFactory) Build(payload *models.SMEARPayload) []*models.Station {
	if payload == nil || payload.Columns == nil || payload.Data == nil {
		return []*models.Station{}
	}

	// parse each row's timestamp once; nil marks a row without a usable samptime
	timestamps := make([]*time.Time, len(payload.Data))
	for i, row := range payload.Data {
		if ts, ok := parseSampleTime(row[models.SampleTimeKey]); ok {
			timestamps[i] = &ts
		}
	}

	stations := make([]*models.Station, 0, len(payload.Columns))
	for _, identifier := range payload.Columns {
		station := models.NewStation(identifier)

		for i, row := range payload.Data {
			if timestamps[i] == nil {
				continue
			}
			value, ok := parseConcentration(row[identifier])
			if !ok {
				continue
			}
			station.AddSample(*timestamps[i], value)
		}

		stations = append(stations, station)
	}

	return stations
}

// BuildFromJSON decodes a raw SMEAR response and builds stations from it
func (f *StationFactory) BuildFromJSON(data []byte) ([]*models.Station, error) {
	var payload models.SMEARPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return f.Build(&payload), nil
}

func parseSampleTime(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(models.SampleTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func parseConcentration(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}
