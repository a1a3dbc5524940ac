package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STATFI_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !strings.HasSuffix(cfg.Providers.STATFIURL, "Kokodata.px") {
		t.Errorf("Providers.STATFIURL = %v, want the Kokodata.px table", cfg.Providers.STATFIURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for defaults", err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("STATFI_FIRST_YEAR", "2000")
	t.Setenv("STATFI_LAST_YEAR", "2002")
	t.Setenv("SERVER_IDLE_TIMEOUT", "not a duration")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Providers.Timeout != 5*time.Second {
		t.Errorf("Providers.Timeout = %v, want 5s", cfg.Providers.Timeout)
	}
	if cfg.Server.IdleTimeout != 60*time.Second {
		t.Errorf("Server.IdleTimeout = %v, want the 60s default", cfg.Server.IdleTimeout)
	}

	years := cfg.STATFIYears()
	if len(years) != 3 || years[0] != 2000 || years[2] != 2002 {
		t.Errorf("STATFIYears() = %v, want [2000 2001 2002]", years)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Providers: ProvidersConfig{
				SMEARTimeseriesURL: "https://smear.example/search/timeseries",
				SMEARVariableURL:   "https://smear.example/search/variable",
				STATFIURL:          "https://statfi.example/Kokodata.px",
				Timeout:            time.Second,
				SMEARInterval:      "60",
			},
			Compare: CompareConfig{STATFIFirstYear: 1990, STATFILastYear: 2017},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "SERVER_PORT"},
		{name: "empty url", mutate: func(c *Config) { c.Providers.STATFIURL = "" }, wantErr: "STATFI_URL"},
		{name: "bad scheme", mutate: func(c *Config) { c.Providers.SMEARVariableURL = "ftp://x/y" }, wantErr: "SMEAR_VARIABLE_URL"},
		{name: "zero timeout", mutate: func(c *Config) { c.Providers.Timeout = 0 }, wantErr: "PROVIDER_TIMEOUT"},
		{name: "bad interval", mutate: func(c *Config) { c.Providers.SMEARInterval = "hourly" }, wantErr: "SMEAR_INTERVAL"},
		{name: "inverted years", mutate: func(c *Config) { c.Compare.STATFIFirstYear = 2020 }, wantErr: "STATFI_FIRST_YEAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %s", err, tt.wantErr)
			}
		})
	}
}
