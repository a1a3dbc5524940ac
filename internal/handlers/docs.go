package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string, required bool, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    required,
		"schema":      schema,
	}
}

func repeatedParam(name, description string, required bool) map[string]interface{} {
	param := queryParam(name, description, required, map[string]interface{}{
		"type":  "array",
		"items": map[string]string{"type": "string"},
	})
	param["style"] = "form"
	param["explode"] = true
	return param
}

func stringSchema(extra ...string) map[string]interface{} {
	schema := map[string]interface{}{"type": "string"}
	for i := 0; i+1 < len(extra); i += 2 {
		schema[extra[i]] = extra[i+1]
	}
	return schema
}

func enumSchema(values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func arrayOf(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

func errorResponses(codes ...string) map[string]interface{} {
	descriptions := map[string]string{
		"400": "Invalid parameters or unknown registry name",
		"404": "The provider has no such resource",
		"502": "The upstream provider returned an error",
		"504": "The upstream provider timed out",
	}
	out := make(map[string]interface{}, len(codes))
	for _, code := range codes {
		out[code] = jsonResponse(descriptions[code], ref("Error"))
	}
	return out
}

func withResponses(ok map[string]interface{}, errs map[string]interface{}) map[string]interface{} {
	errs["200"] = ok
	return errs
}

var smearQueryParams = []map[string]interface{}{
	queryParam("gas", "Gas kind", true, enumSchema("CO2", "SO2", "NO")),
	repeatedParam("station", "Station display name, e.g. Hyytiälä", true),
	queryParam("start", "Range start (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS, UTC)", true, stringSchema()),
	queryParam("end", "Range end, inclusive", true, stringSchema()),
	queryParam("aggregation", "Server-side aggregation (default NONE)", false, enumSchema("NONE", "MIN", "MAX", "AVG")),
	queryParam("interval", "Sampling interval in minutes", false, stringSchema()),
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the climate comparison API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	numberOrNull := map[string]interface{}{"type": "number", "nullable": true}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Climate Compare API",
			"description": "Compares SMEAR station gas concentrations with Statistics Finland greenhouse gas emission figures",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/registry/stations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List stations",
					"description": "Station names from the registry, optionally only those measuring a gas",
					"parameters": []map[string]interface{}{
						queryParam("gas", "Only stations measuring this gas", false, enumSchema("CO2", "SO2", "NO")),
					},
					"responses": withResponses(jsonResponse("Station names", map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"gas":      stringSchema(),
							"stations": arrayOf(stringSchema()),
						},
					}), errorResponses("400")),
				},
			},
			"/api/registry/figures": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List figures and years",
					"responses": map[string]interface{}{
						"200": jsonResponse("Figure labels and selectable years", map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"figures": arrayOf(stringSchema()),
								"years":   arrayOf(map[string]interface{}{"type": "integer"}),
							},
						}),
					},
				},
			},
			"/api/smear/stations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get station series",
					"description": "Fetches and parses SMEAR time series, one entry per requested station",
					"parameters":  smearQueryParams,
					"responses":   withResponses(jsonResponse("Parsed stations", arrayOf(ref("Station"))), errorResponses("400", "502", "504")),
				},
			},
			"/api/smear/summary": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Summarize station series",
					"description": "Min, max and mean of each station over the whole range; summary is null for stations without samples",
					"parameters":  smearQueryParams,
					"responses": withResponses(jsonResponse("Per-station summaries", arrayOf(map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"station":    stringSchema(),
							"identifier": stringSchema(),
							"samples":    map[string]string{"type": "integer"},
							"summary":    ref("Summary"),
						},
					})), errorResponses("400", "502", "504")),
				},
			},
			"/api/smear/daily": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Cross-station daily aggregate",
					"description": "Reduces one UTC day across stations. Stations without samples are listed in missing; no_data is true when every station is missing.",
					"parameters": []map[string]interface{}{
						queryParam("gas", "Gas kind", true, enumSchema("CO2", "SO2", "NO")),
						queryParam("date", "Day (YYYY-MM-DD)", true, stringSchema("format", "date")),
						repeatedParam("station", "Station display name (default: every station measuring the gas)", false),
					},
					"responses": withResponses(jsonResponse("Daily reduction", map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"date":        stringSchema("format", "date-time"),
							"min":         map[string]string{"type": "number"},
							"min_station": stringSchema(),
							"max":         map[string]string{"type": "number"},
							"max_station": stringSchema(),
							"mean":        map[string]string{"type": "number"},
							"missing":     arrayOf(stringSchema()),
							"no_data":     map[string]string{"type": "boolean"},
						},
					}), errorResponses("400", "502", "504")),
				},
			},
			"/api/smear/metadata": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Variable data period",
					"parameters": []map[string]interface{}{
						queryParam("station", "Station display name", true, stringSchema()),
						queryParam("gas", "Gas kind", true, enumSchema("CO2", "SO2", "NO")),
					},
					"responses": withResponses(jsonResponse("Period the provider holds data for", map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"tablevariable": stringSchema(),
							"periodStart":   map[string]interface{}{"type": "string", "nullable": true},
							"periodEnd":     map[string]interface{}{"type": "string", "nullable": true},
						},
					}), errorResponses("400", "404", "502", "504")),
				},
			},
			"/api/statfi/figures": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get emission figures",
					"parameters": []map[string]interface{}{
						repeatedParam("figure", "Figure display label", true),
						repeatedParam("year", "Year", true),
						queryParam("plot_type", "Chart style (default LINE)", false, enumSchema("LINE", "BAR")),
					},
					"responses": withResponses(jsonResponse("Parsed figures", arrayOf(ref("Figure"))), errorResponses("400", "502", "504")),
				},
			},
			"/api/compare": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Compare SMEAR with STATFI",
					"description": "Returns a breakdown when every SMEAR year bucket has samples for every station, otherwise yearly averages",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{"schema": ref("CompareOptions")},
						},
					},
					"responses": withResponses(jsonResponse("Reconciled comparison", map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"options":      ref("CompareOptions"),
							"statfi_years": arrayOf(map[string]interface{}{"type": "integer"}),
							"smear_years":  arrayOf(map[string]interface{}{"type": "integer"}),
							"figures":      map[string]string{"type": "integer"},
							"alignment": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"mode": enumSchema("breakdown", "yearly_average"),
								},
							},
						},
					}), errorResponses("400", "502", "504")),
				},
			},
			"/api/options/last": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Last applied options",
					"responses": map[string]interface{}{
						"200": jsonResponse("Options of the last successful request per view", map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"smear":   map[string]interface{}{"type": "object", "nullable": true},
								"statfi":  map[string]interface{}{"type": "object", "nullable": true},
								"compare": map[string]interface{}{"allOf": []interface{}{ref("CompareOptions")}, "nullable": true},
							},
						}),
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": jsonResponse("Service is healthy", map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"status":    stringSchema(),
								"timestamp": stringSchema("format", "date-time"),
							},
						}),
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   stringSchema(),
						"message": stringSchema(),
						"code":    map[string]string{"type": "integer"},
					},
				},
				"Summary": map[string]interface{}{
					"type":     "object",
					"nullable": true,
					"properties": map[string]interface{}{
						"min":  map[string]string{"type": "number"},
						"max":  map[string]string{"type": "number"},
						"mean": map[string]string{"type": "number"},
					},
				},
				"Station": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":           stringSchema(),
						"identifier":     stringSchema(),
						"timestamps":     arrayOf(stringSchema("format", "date-time")),
						"concentrations": arrayOf(map[string]interface{}{"type": "number"}),
					},
				},
				"Figure": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name_value": stringSchema(),
						"name_text":  stringSchema(),
						"yearly_data": arrayOf(map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"year":  map[string]string{"type": "integer"},
								"value": numberOrNull,
							},
						}),
					},
				},
				"CompareOptions": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"statfi_figure_names": arrayOf(stringSchema()),
						"statfi_years":        arrayOf(stringSchema()),
						"smear_gas":           enumSchema("CO2", "SO2", "NO"),
						"smear_stations":      arrayOf(stringSchema()),
						"smear_years":         arrayOf(stringSchema()),
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
