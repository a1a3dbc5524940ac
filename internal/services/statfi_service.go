package services

import (
	"context"
	"time"

	"climate-compare/internal/factories"
	"climate-compare/internal/models"
	"climate-compare/internal/repository"
	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
)

// STATFIService fetches STATFI greenhouse gas figures
type STATFIService struct {
	repo     repository.ProviderRepository
	registry *models.FigureRegistry
	factory  *factories.FigureFactory
	applied  models.AppliedOptions[*models.STATFIOptions]
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewSTATFIService creates a new STATFI service
func NewSTATFIService(repo repository.ProviderRepository, registry *models.FigureRegistry, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *STATFIService {
	return &STATFIService{
		repo:     repo,
		registry: registry,
		factory:  factories.NewFigureFactory(),
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// Registry returns the figure registry used to resolve labels
func (s *STATFIService) Registry() *models.FigureRegistry {
	return s.registry
}

// NewOptions builds request options from display labels
func (s *STATFIService) NewOptions(figureNames, years []string, plotType models.PlotType) (*models.STATFIOptions, error) {
	return models.NewSTATFIOptions(s.registry, figureNames, years, plotType)
}

// FetchFigures fetches and parses the figures selected by opts.
// Successful options become the last-applied STATFI options.
func (s *STATFIService) FetchFigures(ctx context.Context, opts *models.STATFIOptions) ([]*models.Figure, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[STATFI_FETCH_START] Fetching figures", logging.Fields{
		"figures":   opts.FigureIDs(),
		"years":     opts.Years,
		"plot_type": opts.PlotType.Code(),
	})

	payload, err := s.repo.FetchSTATFI(ctx, opts)
	if err != nil {
		return nil, err
	}

	figures := s.factory.Build(payload)
	s.metrics.RecordParsed("figure", len(figures))
	s.applied.Apply(opts)

	s.logger.Info(ctx, "[STATFI_FETCH_COMPLETE] Figures parsed", logging.Fields{
		"figures":     len(figures),
		"values":      len(payload.Value),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return figures, nil
}

// LastApplied returns the last options that produced a successful fetch
func (s *STATFIService) LastApplied() (*models.STATFIOptions, bool) {
	return s.applied.Last()
}
