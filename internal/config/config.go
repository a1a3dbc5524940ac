package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"climate-compare/internal/models"
)

// Config is the application configuration read from the environment
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Providers ProvidersConfig
	Compare   CompareConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level string
}

// ProvidersConfig points at the SMEAR and STATFI open data APIs
type ProvidersConfig struct {
	SMEARTimeseriesURL string
	SMEARVariableURL   string
	STATFIURL          string
	Timeout            time.Duration
	UserAgent          string
	SMEARInterval      string
}

// CompareConfig holds the registry source and the STATFI year range offered to clients
type CompareConfig struct {
	RegistryPath    string
	STATFIFirstYear int
	STATFILastYear  int
}

// LoadConfig reads an optional .env file then the process environment
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Providers: ProvidersConfig{
			SMEARTimeseriesURL: getEnv("SMEAR_TIMESERIES_URL", "https://smear-backend.rahtiapp.fi/search/timeseries"),
			SMEARVariableURL:   getEnv("SMEAR_VARIABLE_URL", "https://smear-backend.rahtiapp.fi/search/variable"),
			STATFIURL:          getEnv("STATFI_URL", "https://pxnet2.stat.fi:443/PXWeb/api/v1/en/ymp/taulukot/Kokodata.px"),
			Timeout:            getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
			UserAgent:          getEnv("PROVIDER_USER_AGENT", "climate-compare/1.0"),
			SMEARInterval:      getEnv("SMEAR_INTERVAL", "60"),
		},
		Compare: CompareConfig{
			RegistryPath:    getEnv("REGISTRY_PATH", ""),
			STATFIFirstYear: getEnvAsInt("STATFI_FIRST_YEAR", 1990),
			STATFILastYear:  getEnvAsInt("STATFI_LAST_YEAR", 2017),
		},
	}

	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Providers.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.Providers.Timeout))
	}

	for name, raw := range map[string]string{
		"SMEAR_TIMESERIES_URL": c.Providers.SMEARTimeseriesURL,
		"SMEAR_VARIABLE_URL":   c.Providers.SMEARVariableURL,
		"STATFI_URL":           c.Providers.STATFIURL,
	} {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if _, err := models.ParseInterval(c.Providers.SMEARInterval); err != nil {
		errs = append(errs, fmt.Errorf("SMEAR_INTERVAL: %w", err))
	}
	if c.Compare.STATFIFirstYear > c.Compare.STATFILastYear {
		errs = append(errs, fmt.Errorf("STATFI_FIRST_YEAR %d is after STATFI_LAST_YEAR %d",
			c.Compare.STATFIFirstYear, c.Compare.STATFILastYear))
	}

	return errors.Join(errs...)
}

// STATFIYears returns every year in the configured STATFI range
func (c *Config) STATFIYears() []int {
	years := make([]int, 0, c.Compare.STATFILastYear-c.Compare.STATFIFirstYear+1)
	for y := c.Compare.STATFIFirstYear; y <= c.Compare.STATFILastYear; y++ {
		years = append(years, y)
	}
	return years
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
