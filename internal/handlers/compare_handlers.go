package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"climate-compare/internal/aggregation"
	"climate-compare/internal/models"
	"climate-compare/internal/repository"
	"climate-compare/internal/services"
	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
	"climate-compare/pkg/provider"
)

// maxBodyBytes bounds POST request bodies
const maxBodyBytes = 1 << 20

// CompareHandler handles the SMEAR, STATFI and comparison API endpoints
type CompareHandler struct {
	smearService   *services.SMEARService
	statfiService  *services.STATFIService
	compareService *services.CompareService
	statfiYears    []int
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewCompareHandler creates a new handler; statfiYears are the years offered to clients
func NewCompareHandler(
	smearService *services.SMEARService,
	statfiService *services.STATFIService,
	compareService *services.CompareService,
	statfiYears []int,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *CompareHandler {
	return &CompareHandler{
		smearService:   smearService,
		statfiService:  statfiService,
		compareService: compareService,
		statfiYears:    statfiYears,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// StationListResponse lists registry stations, optionally for one gas
type StationListResponse struct {
	Gas      string   `json:"gas,omitempty"`
	Stations []string `json:"stations"`
}

// FigureListResponse lists the STATFI figures and years that can be requested
type FigureListResponse struct {
	Figures []string `json:"figures"`
	Years   []int    `json:"years"`
}

// StationsResponse carries parsed SMEAR stations with their display names
type StationsResponse struct {
	Options  *models.SMEAROptions `json:"options"`
	Stations []NamedStation       `json:"stations"`
}

// NamedStation is a station together with its registry name
type NamedStation struct {
	Name string `json:"name"`
	*models.Station
}

// DailyResponse is the cross-station reduction of one day.
// NoData is set when no requested station has samples that day.
type DailyResponse struct {
	aggregation.DailyResult
	NoData bool `json:"no_data"`
}

// FiguresResponse carries parsed STATFI figures
type FiguresResponse struct {
	Options *models.STATFIOptions `json:"options"`
	Figures []*models.Figure      `json:"figures"`
}

// LastOptionsResponse holds the last-applied options of every view
type LastOptionsResponse struct {
	SMEAR   *models.SMEAROptions   `json:"smear"`
	STATFI  *models.STATFIOptions  `json:"statfi"`
	Compare *models.CompareOptions `json:"compare"`
}

// ListStations handles GET /api/registry/stations
func (h *CompareHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/registry/stations"
	defer h.observe(endpoint, time.Now())

	registry := h.smearService.Registry()
	gasName := r.URL.Query().Get("gas")
	if gasName == "" {
		h.sendOK(w, r, endpoint, StationListResponse{Stations: registry.Names()})
		return
	}

	gas, err := models.ParseGas(gasName)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.sendOK(w, r, endpoint, StationListResponse{Gas: gas.Code(), Stations: registry.StationsForGas(gas)})
}

// ListFigures handles GET /api/registry/figures
func (h *CompareHandler) ListFigures(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/registry/figures"
	defer h.observe(endpoint, time.Now())

	h.sendOK(w, r, endpoint, FigureListResponse{
		Figures: h.statfiService.Registry().Labels(),
		Years:   h.statfiYears,
	})
}

// GetStations handles GET /api/smear/stations
func (h *CompareHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/smear/stations"
	defer h.observe(endpoint, time.Now())
	ctx := r.Context()

	opts, err := h.smearOptions(r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	stations, err := h.smearService.FetchStations(ctx, opts)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	named := make([]NamedStation, 0, len(stations))
	for _, station := range stations {
		name, err := h.smearService.Registry().StationName(station.Identifier)
		if err != nil {
			h.handleError(w, r, endpoint, err)
			return
		}
		named = append(named, NamedStation{Name: name, Station: station})
	}

	h.sendOK(w, r, endpoint, StationsResponse{Options: opts, Stations: named})
}

// GetSummary handles GET /api/smear/summary
func (h *CompareHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/smear/summary"
	defer h.observe(endpoint, time.Now())

	opts, err := h.smearOptions(r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	summaries, err := h.smearService.Summarize(r.Context(), opts)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.sendOK(w, r, endpoint, summaries)
}

// GetDaily handles GET /api/smear/daily
func (h *CompareHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/smear/daily"
	defer h.observe(endpoint, time.Now())
	q := r.URL.Query()

	gas, err := models.ParseGas(q.Get("gas"))
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		h.handleError(w, r, endpoint, &models.ValidationError{
			Field:   "date",
			Value:   q.Get("date"),
			Message: "invalid date format, expected YYYY-MM-DD",
		})
		return
	}

	stations := q["station"]
	if len(stations) == 0 {
		stations = h.smearService.Registry().StationsForGas(gas)
	}

	result, err := h.smearService.Daily(r.Context(), gas, stations, date)
	if err != nil && !errors.Is(err, aggregation.ErrEmptySeries) {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.sendOK(w, r, endpoint, DailyResponse{DailyResult: result, NoData: err != nil})
}

// GetVariableMetadata handles GET /api/smear/metadata
func (h *CompareHandler) GetVariableMetadata(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/smear/metadata"
	defer h.observe(endpoint, time.Now())
	q := r.URL.Query()

	gas, err := models.ParseGas(q.Get("gas"))
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	meta, err := h.smearService.VariablePeriod(r.Context(), q.Get("station"), gas)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.sendOK(w, r, endpoint, meta)
}

// GetFigures handles GET /api/statfi/figures
func (h *CompareHandler) GetFigures(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/statfi/figures"
	defer h.observe(endpoint, time.Now())
	q := r.URL.Query()

	plotType, err := models.ParsePlotType(q.Get("plot_type"))
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	for _, year := range q["year"] {
		if _, err := strconv.Atoi(year); err != nil {
			h.handleError(w, r, endpoint, &models.ValidationError{
				Field:   "year",
				Value:   year,
				Message: "invalid year, expected an integer",
			})
			return
		}
	}

	opts, err := h.statfiService.NewOptions(q["figure"], q["year"], plotType)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	figures, err := h.statfiService.FetchFigures(r.Context(), opts)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.sendOK(w, r, endpoint, FiguresResponse{Options: opts, Figures: figures})
}

// Compare handles POST /api/compare
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/compare"
	defer h.observe(endpoint, time.Now())

	var opts models.CompareOptions
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&opts); err != nil {
		h.handleError(w, r, endpoint, &models.ValidationError{
			Field:   "body",
			Message: "invalid JSON body: " + err.Error(),
		})
		return
	}

	result, err := h.compareService.Compare(r.Context(), opts)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.sendOK(w, r, endpoint, result)
}

// GetLastOptions handles GET /api/options/last
func (h *CompareHandler) GetLastOptions(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/options/last"
	defer h.observe(endpoint, time.Now())

	var response LastOptionsResponse
	if opts, ok := h.smearService.LastApplied(); ok {
		response.SMEAR = opts
	}
	if opts, ok := h.statfiService.LastApplied(); ok {
		response.STATFI = opts
	}
	if opts, ok := h.compareService.LastApplied(); ok {
		response.Compare = &opts
	}

	h.sendOK(w, r, endpoint, response)
}

// HealthCheck handles GET /health
func (h *CompareHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// smearOptions reads SMEAR request options from query parameters
func (h *CompareHandler) smearOptions(r *http.Request) (*models.SMEAROptions, error) {
	q := r.URL.Query()

	gas, err := models.ParseGas(q.Get("gas"))
	if err != nil {
		return nil, err
	}
	agg, err := models.ParseAggregation(q.Get("aggregation"))
	if err != nil {
		return nil, err
	}
	start, err := parseTimestamp("start", q.Get("start"))
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("end", q.Get("end"))
	if err != nil {
		return nil, err
	}

	stations := q["station"]
	if len(stations) == 0 {
		return nil, &models.ValidationError{Field: "station", Message: "at least one station is required"}
	}

	return h.smearService.NewOptions(gas, agg, start, end, stations, q.Get("interval"))
}

var timestampLayouts = []string{time.RFC3339, repository.SMEARTimeLayout, "2006-01-02"}

func parseTimestamp(field, value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &models.ValidationError{
		Field:   field,
		Value:   value,
		Message: "invalid " + field + ", expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS",
	}
}

// handleError maps service errors to status codes
func (h *CompareHandler) handleError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var (
		validationErr *models.ValidationError
		registryErr   *models.RegistryError
		notFoundErr   *repository.NotFoundError
		httpErr       *provider.HTTPError
		tooLargeErr   *provider.ResponseTooLargeError
		netErr        net.Error
	)

	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := "internal server error"

	switch {
	case errors.As(err, &validationErr):
		status, errorType, message = http.StatusBadRequest, "validation_error", validationErr.Error()
	case errors.As(err, &registryErr):
		status, errorType, message = http.StatusBadRequest, "registry_miss", registryErr.Error()
	case errors.As(err, &notFoundErr):
		status, errorType, message = http.StatusNotFound, "not_found", notFoundErr.Error()
	case errors.As(err, &httpErr):
		status, errorType, message = http.StatusBadGateway, "provider_error", httpErr.Error()
	case errors.As(err, &tooLargeErr):
		status, errorType, message = http.StatusBadGateway, "provider_error", tooLargeErr.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		status, errorType, message = http.StatusGatewayTimeout, "provider_timeout", "upstream provider timed out"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"status":   status,
		}, err)
	} else {
		h.logger.Warn(r.Context(), "[API_REJECTED] Request rejected", logging.Fields{
			"endpoint": endpoint,
			"status":   status,
			"reason":   err.Error(),
		})
	}

	h.metrics.RecordAPIError(errorType, endpoint)
	h.sendError(w, r, endpoint, message, status)
}

func (h *CompareHandler) observe(endpoint string, start time.Time) {
	h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *CompareHandler) sendOK(w http.ResponseWriter, r *http.Request, endpoint string, data interface{}) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, data, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *CompareHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *CompareHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all API routes
func (h *CompareHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.RequestID)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/registry/stations", h.ListStations).Methods("GET")
	api.HandleFunc("/registry/figures", h.ListFigures).Methods("GET")
	api.HandleFunc("/smear/stations", h.GetStations).Methods("GET")
	api.HandleFunc("/smear/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/smear/daily", h.GetDaily).Methods("GET")
	api.HandleFunc("/smear/metadata", h.GetVariableMetadata).Methods("GET")
	api.HandleFunc("/statfi/figures", h.GetFigures).Methods("GET")
	api.HandleFunc("/compare", h.Compare).Methods("POST")
	api.HandleFunc("/options/last", h.GetLastOptions).Methods("GET")
	api.HandleFunc("/docs", SwaggerUI).Methods("GET")
	api.HandleFunc("/docs/openapi.json", OpenAPISpec).Methods("GET")
}
