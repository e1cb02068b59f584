package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "CATALOG_DB", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.CatalogDB != "" {
		t.Fatalf("expected in-memory catalog by default, got %q", cfg.CatalogDB)
	}
	if len(cfg.Packages) != 3 {
		t.Fatalf("expected default packages, got %v", cfg.Packages)
	}
	if !cfg.ServiceFee.Equal(calculator.DefaultServiceFee) {
		t.Fatalf("unexpected service fee: %s", cfg.ServiceFee)
	}
	if cfg.CatalogOverride {
		t.Fatalf("default catalog must not be marked as an override")
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if !cfg.EnableRequestLogging {
		t.Fatalf("expected request logging enabled by default")
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limits: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CATALOG_DB", "/tmp/catalog.db")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.CatalogDB != "/tmp/catalog.db" {
		t.Fatalf("expected catalog path from env, got %s", cfg.CatalogDB)
	}
	if cfg.RateLimitRPS != 5 {
		t.Fatalf("expected rps 5, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("invalid burst should be ignored, got %d", cfg.RateLimitBurst)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	path := writeConfigFile(t, `
port: "7070"
service_fee: 1500
write_timeout: 30s
enable_request_logging: false
rate_limit:
  rps: 0
packages:
  - type: intensive
    name: Intensive
    days: 6
    rate: "900"
  - type: light
    days: 2
    rate: 450.50
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7070" {
		t.Fatalf("YAML should override env port, got %s", cfg.Port)
	}
	if !cfg.ServiceFee.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected service fee: %s", cfg.ServiceFee)
	}
	if !cfg.CatalogOverride {
		t.Fatalf("expected YAML catalog to be marked as an override")
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Fatalf("unexpected write timeout: %s", cfg.WriteTimeout)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled")
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("absent burst should keep default, got %d", cfg.RateLimitBurst)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("Catalog returned error: %v", err)
	}
	light, ok := catalog.Lookup("light")
	if !ok {
		t.Fatalf("expected light package in catalog")
	}
	if light.Name != "light" || light.Days != 2 || !light.Rate.Equal(decimal.RequireFromString("450.5")) {
		t.Fatalf("unexpected light package: %+v", light)
	}
	if got := catalog.Packages()[0].Type; got != "intensive" {
		t.Fatalf("expected file order to be kept, got %s first", got)
	}
}

func TestLoadCLIOverridesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_BURST", "5")

	path := writeConfigFile(t, "port: \"7070\"\ncatalog_db: from-yaml.db\n")
	port := "6060"
	db := "from-cli.db"
	burst := 9
	negative := -1.0

	cfg, err := Load(&CLIOverrides{
		ConfigFile:     path,
		Port:           &port,
		CatalogDB:      &db,
		RateLimitRPS:   &negative,
		RateLimitBurst: &burst,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "6060" || cfg.CatalogDB != "from-cli.db" {
		t.Fatalf("CLI overrides not applied: %+v", cfg)
	}
	if cfg.RateLimitBurst != 9 {
		t.Fatalf("expected burst 9, got %d", cfg.RateLimitBurst)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Fatalf("negative rps should be ignored, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	tests := map[string]string{
		"bad yaml":        "port: [",
		"bad fee":         "service_fee: lots\n",
		"bad rate":        "packages:\n  - type: x\n    days: 2\n    rate: cheap\n",
		"invalid catalog": "packages:\n  - type: x\n    days: 0\n    rate: \"10\"\n",
		"duplicate types": "packages:\n  - type: x\n    days: 1\n    rate: \"10\"\n  - type: x\n    days: 2\n    rate: \"10\"\n",
	}

	for name, body := range tests {
		body := body
		t.Run(name, func(t *testing.T) {
			path := writeConfigFile(t, body)
			if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadYAMLWithoutCatalogKeepsStoredCatalog(t *testing.T) {
	clearEnv(t)

	path := writeConfigFile(t, "port: \"7070\"\ncatalog_db: catalog.db\n")

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CatalogOverride {
		t.Fatalf("expected no catalog override when YAML omits service_fee and packages")
	}
}
