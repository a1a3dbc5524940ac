package repository

import (
	"net/url"
	"strings"
	"time"

	"climate-compare/internal/models"
)

// SMEARTimeLayout is the from/to layout accepted by the SMEAR API
const SMEARTimeLayout = "2006-01-02T15:04:05"

// BuildSMEARURL returns the timeseries URL for opts. Parameters keep the
// order aggregation, interval, from, to, then one tablevariable per station.
func BuildSMEARURL(baseURL string, opts *models.SMEAROptions) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("?aggregation=")
	b.WriteString(url.QueryEscape(opts.Aggregation.Code()))
	b.WriteString("&interval=")
	b.WriteString(url.QueryEscape(opts.Interval))
	b.WriteString("&from=")
	b.WriteString(url.QueryEscape(opts.Start.Format(SMEARTimeLayout)))
	b.WriteString("&to=")
	b.WriteString(url.QueryEscape(opts.End.Format(SMEARTimeLayout)))
	for _, tv := range opts.TableVariables() {
		b.WriteString("&tablevariable=")
		b.WriteString(url.QueryEscape(tv))
	}
	return b.String()
}

// BuildVariableMetadataURL returns the URL describing one table variable
func BuildVariableMetadataURL(baseURL string, gv models.GasVariable) string {
	return baseURL + "?tablevariable=" + url.QueryEscape(gv.TableVariable())
}

// BuildSTATFIQuery returns the PX-Web query selecting opts' figures and years
func BuildSTATFIQuery(opts *models.STATFIOptions) models.STATFIQuery {
	return models.STATFIQuery{
		Query: []models.STATFIQueryItem{
			{
				Code:      models.IndicatorDimension,
				Selection: models.STATFISelection{Filter: "item", Values: opts.FigureIDs()},
			},
			{
				Code:      models.YearDimension,
				Selection: models.STATFISelection{Filter: "item", Values: append([]string(nil), opts.Years...)},
			},
		},
		Response: models.STATFIResponse{Format: "json-stat2"},
	}
}

// YearWindow returns Jan 1 00:00:00 and Dec 31 23:59:59 of year
func YearWindow(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
}

// SMEAROptionsForYear builds the SMEAR request covering one year of a comparison.
// Comparisons always ask the provider for arithmetic means.
func SMEAROptionsForYear(registry *models.StationRegistry, compare models.CompareOptions, year int, interval string) (*models.SMEAROptions, error) {
	start, end := YearWindow(year)
	return models.NewSMEAROptions(registry, compare.SMEARGas, models.AggregationAvg, start, end, compare.SMEARStations, interval)
}
