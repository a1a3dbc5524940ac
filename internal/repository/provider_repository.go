package repository

import (
	"context"
	"fmt"

	"climate-compare/internal/models"
	"climate-compare/pkg/logging"
)

// Provider labels used in logs and metrics
const (
	ProviderSMEAR  = "smear"
	ProviderSTATFI = "statfi"
)

// ProviderRepository provides access to the SMEAR and STATFI open data APIs
type ProviderRepository interface {
	// SMEAR operations
	FetchSMEAR(ctx context.Context, opts *models.SMEAROptions) (*models.SMEARPayload, error)
	FetchVariableMetadata(ctx context.Context, gv models.GasVariable) (*models.VariableMetadata, error)

	// STATFI operations
	FetchSTATFI(ctx context.Context, opts *models.STATFIOptions) (*models.STATFIPayload, error)
}

// JSONClient is the transport used by the repository; *provider.Client implements it
type JSONClient interface {
	GetJSON(ctx context.Context, provider, url string, dest interface{}) error
	PostJSON(ctx context.Context, provider, url string, body, dest interface{}) error
}

// Endpoints holds the provider base URLs
type Endpoints struct {
	SMEARTimeseries string
	SMEARVariable   string
	STATFI          string
}

// providerRepository implements ProviderRepository
type providerRepository struct {
	client    JSONClient
	endpoints Endpoints
	smearLog  *logging.ScopedLogger
	statfiLog *logging.ScopedLogger
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(client JSONClient, endpoints Endpoints, logger *logging.StructuredLogger) ProviderRepository {
	return &providerRepository{
		client:    client,
		endpoints: endpoints,
		smearLog:  logger.With(logging.Fields{"provider": ProviderSMEAR}),
		statfiLog: logger.With(logging.Fields{"provider": ProviderSTATFI}),
	}
}

// FetchSMEAR retrieves the timeseries described by opts.
// No request is made when opts names no stations.
func (r *providerRepository) FetchSMEAR(ctx context.Context, opts *models.SMEAROptions) (*models.SMEARPayload, error) {
	if len(opts.Stations) == 0 {
		return &models.SMEARPayload{}, nil
	}

	url := BuildSMEARURL(r.endpoints.SMEARTimeseries, opts)

	var payload models.SMEARPayload
	if err := r.client.GetJSON(ctx, ProviderSMEAR, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch SMEAR timeseries: %w", err)
	}

	r.smearLog.Debug(ctx, "[REPO_FETCH_SMEAR] Timeseries fetched", logging.Fields{
		"gas":      opts.Gas.Code(),
		"stations": len(opts.Stations),
		"rows":     len(payload.Data),
	})

	return &payload, nil
}

// FetchVariableMetadata retrieves the period covered by a table variable.
// The provider answers with a list; only its first element is used.
func (r *providerRepository) FetchVariableMetadata(ctx context.Context, gv models.GasVariable) (*models.VariableMetadata, error) {
	url := BuildVariableMetadataURL(r.endpoints.SMEARVariable, gv)

	var entries []models.VariableMetadata
	if err := r.client.GetJSON(ctx, ProviderSMEAR, url, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch variable metadata: %w", err)
	}

	if len(entries) == 0 {
		r.smearLog.Warn(ctx, "[REPO_VARIABLE_MISSING] Variable metadata not found", logging.Fields{
			"table_variable": gv.TableVariable(),
		})
		return nil, &NotFoundError{
			Resource: "variable_metadata",
			ID:       gv.TableVariable(),
		}
	}

	meta := entries[0]
	if meta.TableVariable == "" {
		meta.TableVariable = gv.TableVariable()
	}
	return &meta, nil
}

// FetchSTATFI retrieves the figures and years selected by opts.
// No request is made when opts selects no figures or no years.
func (r *providerRepository) FetchSTATFI(ctx context.Context, opts *models.STATFIOptions) (*models.STATFIPayload, error) {
	if len(opts.FigureNames) == 0 || len(opts.Years) == 0 {
		return &models.STATFIPayload{}, nil
	}

	var payload models.STATFIPayload
	if err := r.client.PostJSON(ctx, ProviderSTATFI, r.endpoints.STATFI, BuildSTATFIQuery(opts), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch STATFI figures: %w", err)
	}

	r.statfiLog.Debug(ctx, "[REPO_FETCH_STATFI] Figures fetched", logging.Fields{
		"figures": len(opts.FigureNames),
		"years":   len(opts.Years),
		"values":  len(payload.Value),
	})

	return &payload, nil
}

// NotFoundError represents a resource the provider does not know
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
