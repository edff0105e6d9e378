package config

import (
	"os"
	"path/filepath"
	"testing"
)

type TestConfig struct {
	Metrics struct {
		Listen string `yaml:"listen" json:"listen"`
		Path   string `yaml:"path" json:"path"`
	} `yaml:"metrics" json:"metrics"`
	Load struct {
		Callers  int  `yaml:"callers" json:"callers"`
		Interval int  `yaml:"interval_ms" json:"interval_ms"`
		Burst    *int `yaml:"burst" json:"burst"`
	} `yaml:"load" json:"load"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

func TestLoadYAML(t *testing.T) {
	yamlContent := `
metrics:
  listen: ":9100"
  path: "/metrics"
load:
  callers: 8
  interval_ms: 5
log_level: info
`
	tmpFile := createTempFile(t, "test.yaml", yamlContent)

	var cfg TestConfig
	if err := LoadYAML(tmpFile, &cfg); err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}

	if cfg.Metrics.Listen != ":9100" {
		t.Errorf("Metrics.Listen = %v, want :9100", cfg.Metrics.Listen)
	}
	if cfg.Load.Callers != 8 {
		t.Errorf("Load.Callers = %v, want 8", cfg.Load.Callers)
	}
	if cfg.Load.Burst != nil {
		t.Errorf("Load.Burst = %v, want nil", *cfg.Load.Burst)
	}
}

func TestLoadJSON(t *testing.T) {
	jsonContent := `{
  "metrics": {"listen": ":9100", "path": "/metrics"},
  "load": {"callers": 8, "interval_ms": 5, "burst": 3}
}`
	tmpFile := createTempFile(t, "test.json", jsonContent)

	var cfg TestConfig
	if err := Load(tmpFile, &cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %v, want /metrics", cfg.Metrics.Path)
	}
	if cfg.Load.Burst == nil || *cfg.Load.Burst != 3 {
		t.Errorf("Load.Burst = %v, want 3", cfg.Load.Burst)
	}
}

func TestLoadWithEnv(t *testing.T) {
	yamlContent := `
metrics:
  listen: ":9100"
load:
  callers: 8
`
	tmpFile := createTempFile(t, "test.yaml", yamlContent)

	t.Setenv("APP_METRICS_LISTEN", ":9200")
	t.Setenv("APP_LOAD_CALLERS", "16")
	t.Setenv("APP_LOAD_BURST", "4")

	var cfg TestConfig
	if err := LoadWithEnv(tmpFile, "APP", &cfg); err != nil {
		t.Fatalf("LoadWithEnv failed: %v", err)
	}

	if cfg.Metrics.Listen != ":9200" {
		t.Errorf("Metrics.Listen = %v, want :9200", cfg.Metrics.Listen)
	}
	if cfg.Load.Callers != 16 {
		t.Errorf("Load.Callers = %v, want 16", cfg.Load.Callers)
	}
	if cfg.Load.Burst == nil || *cfg.Load.Burst != 4 {
		t.Errorf("Load.Burst = %v, want 4", cfg.Load.Burst)
	}
	// No override for interval
	if cfg.Load.Interval != 0 {
		t.Errorf("Load.Interval = %v, want 0", cfg.Load.Interval)
	}
}

func TestEnvName(t *testing.T) {
	got := EnvName("app", KeyCoreThreads)
	want := "APP_SERVICECOMB_EXECUTOR_DEFAULT_CORETHREADS_PER_GROUP"
	if got != want {
		t.Errorf("EnvName() = %v, want %v", got, want)
	}
	if got := EnvName("", "a.b-c"); got != "A_B_C" {
		t.Errorf("EnvName() without prefix = %v, want A_B_C", got)
	}
}

func TestRequiredFields(t *testing.T) {
	var cfg TestConfig

	validator := RequiredFields("Metrics.Listen")
	if err := validator.Validate(&cfg); err == nil {
		t.Error("RequiredFields should fail for empty listen address")
	}

	cfg.Metrics.Listen = ":9100"
	if err := validator.Validate(&cfg); err != nil {
		t.Errorf("RequiredFields should pass for valid config: %v", err)
	}
}

func TestRangeValidator(t *testing.T) {
	var cfg TestConfig
	cfg.Load.Callers = 0

	validator := RangeValidator("Load.Callers", 1, 1024)
	if err := validator.Validate(&cfg); err == nil {
		t.Error("RangeValidator should fail for value below minimum")
	}

	cfg.Load.Callers = 64
	if err := Validate(&cfg, validator); err != nil {
		t.Errorf("RangeValidator should pass for value in range: %v", err)
	}
}

func TestOneOfValidator(t *testing.T) {
	cfg := TestConfig{LogLevel: "verbose"}

	validator := OneOfValidator("LogLevel", "debug", "info", "warn", "error")
	if err := validator.Validate(&cfg); err == nil {
		t.Error("OneOfValidator should fail for unknown level")
	}

	cfg.LogLevel = "warn"
	if err := validator.Validate(&cfg); err != nil {
		t.Errorf("OneOfValidator should pass for known level: %v", err)
	}
}

func TestAtMostFieldValidator(t *testing.T) {
	var cfg TestConfig
	cfg.Load.Callers = 8
	cfg.Load.Interval = 5

	validator := AtMostFieldValidator("Load.Interval", "Load.Callers")
	if err := validator.Validate(&cfg); err != nil {
		t.Errorf("AtMostFieldValidator should pass when below the limit: %v", err)
	}

	cfg.Load.Interval = 9
	if err := validator.Validate(&cfg); err == nil {
		t.Error("AtMostFieldValidator should fail when above the limit")
	}

	if err := AtMostFieldValidator("Load.Interval", "Metrics.Listen").Validate(&cfg); err == nil {
		t.Error("AtMostFieldValidator should fail for a non-numeric limit")
	}
	if err := AtMostFieldValidator("Load.Missing", "Load.Callers").Validate(&cfg); err == nil {
		t.Error("AtMostFieldValidator should fail for an unknown field")
	}
}

func TestValidators_NonStruct(t *testing.T) {
	n := 3
	if err := RequiredFields("Metrics.Listen").Validate(&n); err == nil {
		t.Error("RequiredFields should fail for a non-struct config")
	}
	if err := RangeValidator("Load.Callers", 0, 1).Validate(nil); err == nil {
		t.Error("RangeValidator should fail for a nil config")
	}
}

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return path
}
