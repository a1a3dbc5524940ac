package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"climate-compare/internal/aggregation"
	"climate-compare/internal/factories"
	"climate-compare/internal/models"
	"climate-compare/internal/repository"
	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
)

// SMEARService fetches SMEAR station series and aggregates them
type SMEARService struct {
	repo     repository.ProviderRepository
	registry *models.StationRegistry
	factory  *factories.StationFactory
	interval string
	applied  models.AppliedOptions[*models.SMEAROptions]
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewSMEARService creates a new SMEAR service; interval is the default sampling interval
func NewSMEARService(repo repository.ProviderRepository, registry *models.StationRegistry, interval string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SMEARService {
	return &SMEARService{
		repo:     repo,
		registry: registry,
		factory:  factories.NewStationFactory(),
		interval: interval,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// Registry returns the station registry used to resolve names
func (s *SMEARService) Registry() *models.StationRegistry {
	return s.registry
}

// NewOptions builds request options, falling back to the configured interval
func (s *SMEARService) NewOptions(gas models.Gas, agg models.Aggregation, start, end time.Time, stations []string, interval string) (*models.SMEAROptions, error) {
	if interval == "" {
		interval = s.interval
	}
	if end.Before(start) {
		return nil, &models.ValidationError{
			Field:   "end",
			Value:   end.Format(repository.SMEARTimeLayout),
			Message: "end must not be before start",
		}
	}
	return models.NewSMEAROptions(s.registry, gas, agg, start, end, stations, interval)
}

// FetchStations fetches and parses the series described by opts.
// Successful options become the last-applied SMEAR options.
func (s *SMEARService) FetchStations(ctx context.Context, opts *models.SMEAROptions) ([]*models.Station, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[SMEAR_FETCH_START] Fetching station series", logging.Fields{
		"gas":         opts.Gas.Code(),
		"aggregation": opts.Aggregation.Code(),
		"stations":    opts.Stations,
		"from":        opts.Start.Format(repository.SMEARTimeLayout),
		"to":          opts.End.Format(repository.SMEARTimeLayout),
	})

	payload, err := s.repo.FetchSMEAR(ctx, opts)
	if err != nil {
		return nil, err
	}

	stations := s.factory.Build(payload)
	s.metrics.RecordParsed("station", len(stations))
	s.applied.Apply(opts)

	s.logger.Info(ctx, "[SMEAR_FETCH_COMPLETE] Station series parsed", logging.Fields{
		"stations":    len(stations),
		"rows":        len(payload.Data),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return stations, nil
}

// Summarize fetches the series and aggregates each station over the whole range
func (s *SMEARService) Summarize(ctx context.Context, opts *models.SMEAROptions) ([]aggregation.StationSummary, error) {
	stations, err := s.FetchStations(ctx, opts)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("summary"))
	defer timer.ObserveDuration()

	summaries, err := aggregation.SummarizeStations(stations, s.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize stations: %w", err)
	}
	return summaries, nil
}

// Daily fetches one day of samples and reduces them across stations.
// A day on which every station is missing returns the result together with
// aggregation.ErrEmptySeries.
func (s *SMEARService) Daily(ctx context.Context, gas models.Gas, stations []string, date time.Time) (aggregation.DailyResult, error) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := time.Date(y, m, d, 23, 59, 59, 0, time.UTC)

	opts, err := s.NewOptions(gas, models.AggregationNone, start, end, stations, "")
	if err != nil {
		return aggregation.DailyResult{}, err
	}

	series, err := s.FetchStations(ctx, opts)
	if err != nil {
		return aggregation.DailyResult{}, err
	}

	timer := s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("daily"))
	result, err := aggregation.DailyAcrossStations(series, start, s.registry)
	timer.ObserveDuration()

	s.metrics.RecordMissingStations(len(result.Missing))
	if errors.Is(err, aggregation.ErrEmptySeries) {
		s.logger.Warn(ctx, "[SMEAR_DAILY_EMPTY] No station has data for the day", logging.Fields{
			"date":    start.Format("2006-01-02"),
			"missing": result.Missing,
		})
	}

	return result, err
}

// VariablePeriod returns the period the provider holds data for a station's gas
func (s *SMEARService) VariablePeriod(ctx context.Context, station string, gas models.Gas) (*models.VariableMetadata, error) {
	gv, err := s.registry.Lookup(station, gas)
	if err != nil {
		return nil, err
	}
	return s.repo.FetchVariableMetadata(ctx, gv)
}

// LastApplied returns the last options that produced a successful fetch
func (s *SMEARService) LastApplied() (*models.SMEAROptions, bool) {
	return s.applied.Last()
}
