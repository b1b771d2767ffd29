package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/tankgauge/nsvmc/internal/petro"
	"github.com/tankgauge/nsvmc/internal/pipelines"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
samples: 5000
seed: 42
model: lumped
measurement:
  api: 30.5
  liquid_temp: 80
  tov: 1000
  fw: 12.5
  level_mm: 5000
  material: inox 304
  product: crude oil
  bsw: 0.4
  bsw_uncertainty: 0.05
checks:
  - name: wide-nsv
    condition: "nsv.relative_expanded > 0.5"
    severity: warning
output:
  plot: nsv.png
  metrics: nsv.prom
`
	cfg := loadFromString(t, yaml, "scenario.yaml")

	if cfg.Samples != 5000 {
		t.Errorf("samples: got %d", cfg.Samples)
	}
	if cfg.Seed != 42 {
		t.Errorf("seed: got %d", cfg.Seed)
	}
	if cfg.Model != "lumped" {
		t.Errorf("model: got %q", cfg.Model)
	}
	want := Measurement{
		API: 30.5, LiquidTemp: 80, TOV: 1000, FW: 12.5, LevelMM: 5000,
		Material: "inox 304", Product: "crude oil", BSW: 0.4, BSWUncertainty: 0.05,
	}
	if diff := cmp.Diff(want, cfg.Measurement); diff != "" {
		t.Errorf("measurement mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Checks) != 1 || cfg.Checks[0].Severity != "warning" {
		t.Errorf("checks: got %+v", cfg.Checks)
	}
	if cfg.Output.Plot != "nsv.png" || cfg.Output.Metrics != "nsv.prom" {
		t.Errorf("output: got %+v", cfg.Output)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "samples: 1000\n", "scenario.yaml")

	want := Defaults()
	want.Samples = 1000
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Detailed.Repeatability != pipelines.DefaultDetailed().Repeatability {
		t.Errorf("detailed constants not defaulted: %+v", cfg.Detailed)
	}
	if cfg.Output.PlotQuantity != pipelines.QNSV {
		t.Errorf("plot_quantity: got %q", cfg.Output.PlotQuantity)
	}
}

func TestLoad_PartialDetailedOverride(t *testing.T) {
	yaml := `
detailed:
  repeatability: 1.5
`
	cfg := loadFromString(t, yaml, "scenario.yaml")
	if cfg.Detailed.Repeatability != 1.5 {
		t.Errorf("repeatability: got %v", cfg.Detailed.Repeatability)
	}
	if cfg.Detailed.TableCalibration != pipelines.DefaultDetailed().TableCalibration {
		t.Errorf("table_calibration lost its default: %v", cfg.Detailed.TableCalibration)
	}
}

func TestLoad_TOML(t *testing.T) {
	doc := `
samples = 2000
model = "detailed"

[measurement]
api = 14.9
liquid_temp = 91.0
tov = 435.73
level_mm = 2383.0
material = "acero al carbon"
product = "light crude"

[products."light crude"]
k0 = 341.0957
k1 = 0.0
k2 = 0.0
`
	cfg := loadFromString(t, doc, "scenario.toml")
	if cfg.Samples != 2000 {
		t.Errorf("samples: got %d", cfg.Samples)
	}
	k, ok := cfg.Products["light crude"]
	if !ok {
		t.Fatalf("products: got %v", cfg.Products)
	}
	if k.K0 != 341.0957 {
		t.Errorf("k0: got %v", k.K0)
	}

	p := cfg.Params()
	if _, err := p.Products.Lookup("Light Crude"); err != nil {
		t.Errorf("custom product not reachable through Params: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"too few samples", "samples: 1\n", "samples"},
		{"unknown model", "model: bayesian\n", "model"},
		{"negative tov", "measurement:\n  tov: -1\n", "measurement.tov"},
		{"fw above tov", "measurement:\n  fw: 500\n", "measurement.fw"},
		{"bsw over 100", "measurement:\n  bsw: 101\n", "measurement.bsw"},
		{"empty material", "measurement:\n  material: \"\"\n", "measurement.material"},
		{"bad severity", "checks:\n  - name: x\n    condition: nsv.mean > 1\n    severity: page\n", "severity"},
		{"missing condition", "checks:\n  - name: x\n", "condition"},
		{"zero bins", "output:\n  plot_bins: 0\n", "plot_bins"},
		{"malformed yaml", "samples: [\n", "parse yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadStringErr(t, tc.content, "scenario.yaml")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_ExampleScenario(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "scenario.example.yaml"))
	if err != nil {
		t.Fatalf("Load(example) error: %v", err)
	}
	if cfg.Measurement != Defaults().Measurement {
		t.Errorf("example measurement drifted from defaults: %+v", cfg.Measurement)
	}
	if len(cfg.Checks) != 2 {
		t.Errorf("checks: got %d, want 2", len(cfg.Checks))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestParams(t *testing.T) {
	cfg := Defaults()
	cfg.Model = " Lumped "
	p := cfg.Params()

	if p.Model != pipelines.ModelLumped {
		t.Errorf("model: got %q", p.Model)
	}
	if p.TOV != DefaultTOV || p.LevelMM != DefaultLevelMM {
		t.Errorf("measurement not carried: %+v", p)
	}
	if _, err := p.Products.Lookup(petro.CrudeOil); err != nil {
		t.Errorf("built-in product missing: %v", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	writeFile(t, path, "samples: 1000\n")

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "samples: 3000\n")

	select {
	case cfg := <-reloaded:
		if cfg.Samples != 3000 {
			t.Errorf("reloaded samples: got %d", cfg.Samples)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func TestWatch_InvalidReloadKeepsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	writeFile(t, path, "samples: 1000\n")

	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(*Config) { calls <- struct{}{} })
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "samples: 0\n")

	select {
	case <-calls:
		t.Fatal("onChange called for an invalid scenario")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	<-done
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// loadFromString writes content to a temp file named name and calls Load,
// failing on error.
func loadFromString(t *testing.T, content, name string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content, name)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes content to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content, name string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeFile(t, path, content)
	return Load(path)
}
