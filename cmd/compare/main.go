package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"

	"climate-compare/internal/config"
	"climate-compare/internal/models"
	"climate-compare/internal/reconcile"
	"climate-compare/internal/repository"
	"climate-compare/internal/services"
	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
	"climate-compare/pkg/provider"
)

type CmdArgs struct {
	Figures     []string `long:"figure" required:"true" description:"STATFI figure label, repeat for several figures"`
	STATFIYears []string `long:"statfi-year" required:"true" description:"STATFI year, repeat for several years"`
	Gas         string   `long:"gas" default:"CO2" description:"SMEAR gas: CO2, SO2 or NO"`
	Stations    []string `long:"station" required:"true" description:"SMEAR station name, repeat for several stations"`
	SMEARYears  []string `long:"smear-year" required:"true" description:"SMEAR year, repeat for several years"`
	Registry    string   `long:"registry" default:"" description:"Optional YAML registry file overriding the built-in stations and figures"`
	Interval    string   `long:"interval" default:"" description:"SMEAR sampling interval in minutes or as an ISO-8601 period (default: SMEAR_INTERVAL)"`
	CSV         string   `long:"csv" default:"" description:"Optional path of a CSV file receiving the aligned series"`
	LogLevel    string   `long:"log-level" default:"warn" description:"Log level written to stderr"`
}

func main() {
	args := CmdArgs{}
	if _, err := flags.Parse(&args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		fmt.Println("See 'compare -h' for help")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if args.Interval != "" {
		cfg.Providers.SMEARInterval = args.Interval
	}
	if args.Registry != "" {
		cfg.Compare.RegistryPath = args.Registry
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("climate-compare-cli", "1.0.0", logging.ParseLevel(args.LogLevel))
	logger.SetOutput(os.Stderr)

	ctx := logging.WithOperation(context.Background(), "compare")
	metricsCollector := metrics.NewCollector("climate_compare_cli", prometheus.NewRegistry())

	registries, err := models.LoadRegistries(cfg.Compare.RegistryPath)
	if err != nil {
		logger.Fatal(ctx, "[CLI_ERROR] Failed to load registries", logging.Fields{
			"path": cfg.Compare.RegistryPath,
		}, err)
	}

	providerConfig := provider.DefaultConfig()
	providerConfig.Timeout = cfg.Providers.Timeout
	providerConfig.UserAgent = cfg.Providers.UserAgent
	client := provider.NewClient(providerConfig, logger, metricsCollector)

	repo := repository.NewProviderRepository(client, repository.Endpoints{
		SMEARTimeseries: cfg.Providers.SMEARTimeseriesURL,
		SMEARVariable:   cfg.Providers.SMEARVariableURL,
		STATFI:          cfg.Providers.STATFIURL,
	}, logger)
	compareService := services.NewCompareService(repo, registries, cfg.Providers.SMEARInterval, logger, metricsCollector)

	started := time.Now()
	result, err := compareService.Compare(ctx, models.CompareOptions{
		STATFIFigureNames: args.Figures,
		STATFIYears:       args.STATFIYears,
		SMEARGas:          models.Gas(args.Gas),
		SMEARStations:     args.Stations,
		SMEARYears:        args.SMEARYears,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Comparison failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result, time.Since(started))

	if args.CSV != "" {
		if err := exportCSV(args.CSV, result.Alignment); err != nil {
			fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nAligned series written to %s\n", args.CSV)
	}
}

func printResult(result *services.CompareResult, elapsed time.Duration) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("COMPARISON COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Mode:          %s\n", result.Alignment.Mode())
	fmt.Printf("Gas:           %s\n", result.Options.SMEARGas)
	fmt.Printf("STATFI years:  %v\n", result.STATFIYears)
	fmt.Printf("SMEAR years:   %v\n", result.SMEARYears)
	fmt.Printf("Figures:       %d\n", result.Figures)
	fmt.Printf("Duration:      %v\n", elapsed.Round(time.Millisecond))

	switch a := result.Alignment.(type) {
	case *reconcile.Breakdown:
		fmt.Println("\nYear midpoints:")
		for i, mid := range a.Midpoints {
			fmt.Printf("  %d  %s\n", result.STATFIYears[i], mid.Format(time.RFC3339))
		}
		fmt.Println("\nStations:")
		for _, s := range a.Stations {
			fmt.Printf("  %-14s %d samples\n", s.Station, len(s.Points))
		}
		fmt.Println("\nFigures:")
		for _, f := range a.Figures {
			fmt.Printf("  %s\n", f.NameText)
			for _, p := range f.Points {
				fmt.Printf("    %d  %s\n", p.Year, valueOrDash(p.Value))
			}
		}
	case *reconcile.YearlyAverage:
		fmt.Println("\nStation yearly means:")
		for _, s := range a.Stations {
			fmt.Printf("  %s\n", s.Station)
			for _, p := range s.Points {
				fmt.Printf("    %d  %s\n", p.Year, valueOrDash(p.Value))
			}
		}
		fmt.Println("\nFigures:")
		for _, f := range a.Figures {
			fmt.Printf("  %s\n", f.NameText)
			for _, p := range f.Points {
				fmt.Printf("    %d  %s\n", p.Year, valueOrDash(p.Value))
			}
		}
	}
}

func valueOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
