package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"climate-compare/internal/factories"
	"climate-compare/internal/models"
	"climate-compare/internal/reconcile"
	"climate-compare/internal/repository"
	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
)

// maxConcurrentFetches bounds the provider requests of one comparison
const maxConcurrentFetches = 4

// CompareService fetches both sources of a comparison and reconciles them
type CompareService struct {
	repo           repository.ProviderRepository
	registries     models.Registries
	stationFactory *factories.StationFactory
	figureFactory  *factories.FigureFactory
	interval       string
	applied        models.AppliedOptions[models.CompareOptions]
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// CompareResult is a reconciled comparison
type CompareResult struct {
	Options     models.CompareOptions `json:"options"`
	STATFIYears []int                 `json:"statfi_years"`
	SMEARYears  []int                 `json:"smear_years"`
	Figures     int                   `json:"figures"`
	Alignment   reconcile.Alignment   `json:"alignment"`
}

// NewCompareService creates a new comparison service
func NewCompareService(repo repository.ProviderRepository, registries models.Registries, interval string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CompareService {
	return &CompareService{
		repo:           repo,
		registries:     registries,
		stationFactory: factories.NewStationFactory(),
		figureFactory:  factories.NewFigureFactory(),
		interval:       interval,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// Compare fetches the STATFI figures and one SMEAR bucket per requested SMEAR
// year concurrently, then reconciles them. Successful options become the
// last-applied comparison options.
func (s *CompareService) Compare(ctx context.Context, opts models.CompareOptions) (*CompareResult, error) {
	startTime := time.Now()

	if !opts.IsComplete() {
		return nil, &models.ValidationError{
			Field:   "options",
			Message: "a comparison needs figures, STATFI years, stations and SMEAR years",
		}
	}
	gas, err := models.ParseGas(string(opts.SMEARGas))
	if err != nil {
		return nil, err
	}
	opts.SMEARGas = gas

	statfiYears, err := parseYears("statfi_years", opts.STATFIYears)
	if err != nil {
		return nil, err
	}
	smearYears, err := parseYears("smear_years", opts.SMEARYears)
	if err != nil {
		return nil, err
	}

	statfiOpts, err := models.NewSTATFIOptions(s.registries.Figures, opts.STATFIFigureNames, formatYears(statfiYears), models.PlotTypeBar)
	if err != nil {
		return nil, err
	}

	// resolve every bucket before any request goes out
	smearOpts := make([]*models.SMEAROptions, len(smearYears))
	for i, year := range smearYears {
		smearOpts[i], err = repository.SMEAROptionsForYear(s.registries.Stations, opts, year, s.interval)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "[COMPARE_START] Fetching comparison data", logging.Fields{
		"figures":      statfiOpts.FigureIDs(),
		"statfi_years": statfiYears,
		"gas":          opts.SMEARGas.Code(),
		"stations":     opts.SMEARStations,
		"smear_years":  smearYears,
	})

	var figures []*models.Figure
	smearByYear := make([][]*models.Station, len(smearYears))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	g.Go(func() error {
		payload, err := s.repo.FetchSTATFI(gctx, statfiOpts)
		if err != nil {
			return err
		}
		figures = s.figureFactory.Build(payload)
		return nil
	})

	for i := range smearOpts {
		i := i
		g.Go(func() error {
			payload, err := s.repo.FetchSMEAR(gctx, smearOpts[i])
			if err != nil {
				return fmt.Errorf("SMEAR year %d: %w", smearYears[i], err)
			}
			smearByYear[i] = s.stationFactory.Build(payload)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "[COMPARE_FETCH_ERROR] Failed to fetch comparison data", logging.Fields{
			"stage": "FETCH",
		}, err)
		return nil, err
	}

	stationCount := 0
	for _, bucket := range smearByYear {
		stationCount += len(bucket)
	}
	s.metrics.RecordParsed("figure", len(figures))
	s.metrics.RecordParsed("station", stationCount)

	timer := s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("reconcile"))
	alignment, err := reconcile.Reconcile(statfiYears, figures, smearByYear, s.registries.Stations)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile comparison: %w", err)
	}

	s.metrics.RecordReconciliation(string(alignment.Mode()))
	s.applied.Apply(opts)

	s.logger.Info(ctx, "[COMPARE_COMPLETE] Comparison reconciled", logging.Fields{
		"mode":        alignment.Mode(),
		"figures":     len(figures),
		"stations":    stationCount,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return &CompareResult{
		Options:     opts,
		STATFIYears: statfiYears,
		SMEARYears:  smearYears,
		Figures:     len(figures),
		Alignment:   alignment,
	}, nil
}

// LastApplied returns the last options that produced a successful comparison
func (s *CompareService) LastApplied() (models.CompareOptions, bool) {
	return s.applied.Last()
}

// parseYears converts year strings to sorted, de-duplicated integers
func parseYears(field string, raw []string) ([]int, error) {
	seen := make(map[int]bool, len(raw))
	years := make([]int, 0, len(raw))
	for _, r := range raw {
		year, err := strconv.Atoi(r)
		if err != nil {
			return nil, &models.ValidationError{
				Field:   field,
				Value:   r,
				Message: fmt.Sprintf("invalid year %q", r),
			}
		}
		if !seen[year] {
			seen[year] = true
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years, nil
}

func formatYears(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
