package factories

import (
	"encoding/json"
	"sort"
	"strconv"

	"climate-compare/internal/models"
)

// FigureFactory turns STATFI JSON-stat2 payloads into figures
type FigureFactory struct{}

// NewFigureFactory creates a new figure factory
func NewFigureFactory() *FigureFactory {
	return &FigureFactory{}
}

type indexedCode struct {
	code     string
	position int
}

// Build returns one figure per indicator, ordered by indicator index.
//
// The flat value array is indicator-major: it is cut into blocks of
// len(years), one block per indicator, and a year's value sits at the
// year's index within the block. Missing dimensions, a non-integer year
// code or an empty year dimension yield an empty list.
func (f *FigureFactory) Build(payload *models.STATFIPayload) []*models.Figure {
	if payload == nil || payload.Dimension == nil {
		return []*models.Figure{}
	}

	indicatorDim, ok := payload.Dimension[models.IndicatorDimension]
	if !ok || indicatorDim.Category == nil || indicatorDim.Category.Index == nil || indicatorDim.Category.Label == nil {
		return []*models.Figure{}
	}
	yearDim, ok := payload.Dimension[models.YearDimension]
	if !ok || yearDim.Category == nil || yearDim.Category.Index == nil {
		return []*models.Figure{}
	}

	yearCodes := sortedCodes(yearDim.Category.Index)
	if len(yearCodes) == 0 {
		return []*models.Figure{}
	}

	years := make([]int, 0, len(yearCodes))
	for _, yc := range yearCodes {
		year, err := strconv.Atoi(yc.code)
		if err != nil {
			return []*models.Figure{}
		}
		years = append(years, year)
	}

	chunks := chunkValues(payload.Value, len(years))

	indicators := sortedCodes(indicatorDim.Category.Index)
	figures := make([]*models.Figure, 0, len(indicators))
	for _, indicator := range indicators {
		figure := models.NewFigure(indicator.code, years)
		figure.SetNameText(indicatorDim.Category.Label[indicator.code])

		if indicator.position >= 0 && indicator.position < len(chunks) {
			chunk := chunks[indicator.position]
			for i, yc := range yearCodes {
				if yc.position >= 0 && yc.position < len(chunk) {
					figure.SetYearlyData(years[i], chunk[yc.position])
				}
			}
		}

		figures = append(figures, figure)
	}

	return figures
}

// BuildFromJSON decodes a raw STATFI response and builds figures from it
func (f *FigureFactory) BuildFromJSON(data []byte) ([]*models.Figure, error) {
	var payload models.STATFIPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return f.Build(&payload), nil
}

// Flatten rebuilds the indicator-major value array from figures using the
// payload's index mappings. Missing values come back as nil.
func Flatten(payload *models.STATFIPayload, figures []*models.Figure) []*float64 {
	indicatorIndex := payload.Dimension[models.IndicatorDimension].Category.Index
	yearIndex := payload.Dimension[models.YearDimension].Category.Index
	size := len(yearIndex)

	out := make([]*float64, len(indicatorIndex)*size)
	for _, figure := range figures {
		base, ok := indicatorIndex[figure.NameValue()]
		if !ok {
			continue
		}
		for _, year := range figure.Years() {
			pos, ok := yearIndex[strconv.Itoa(year)]
			if !ok {
				continue
			}
			if v, ok := figure.Value(year); ok {
				value := v
				out[base*size+pos] = &value
			}
		}
	}
	return out
}

// sortedCodes orders a code → position mapping by position
func sortedCodes(index map[string]int) []indexedCode {
	codes := make([]indexedCode, 0, len(index))
	for code, pos := range index {
		codes = append(codes, indexedCode{code: code, position: pos})
	}
	sort.Slice(codes, func(i, j int) bool {
		if codes[i].position != codes[j].position {
			return codes[i].position < codes[j].position
		}
		return codes[i].code < codes[j].code
	})
	return codes
}

func chunkValues(values []*float64, size int) [][]*float64 {
	chunks := make([][]*float64, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
