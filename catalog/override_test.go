package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"selfheal.io/anomaly/catalog"
)

func TestApplyOverridesUnknownMetric(t *testing.T) {
	err := catalog.ApplyOverrides(&catalog.OverrideFile{
		Metrics: map[string]catalog.MetricOverride{"bogus": {Disable: true}},
	})
	if err == nil {
		t.Fatal("override of unknown metric should fail.")
	}
}

func TestApplyOverridesHalfThresholds(t *testing.T) {
	w := 10.0
	err := catalog.ApplyOverrides(&catalog.OverrideFile{
		Metrics: map[string]catalog.MetricOverride{
			"node_cpu_utilization": {Warning: &w},
		},
	})
	if err == nil {
		t.Fatal("warning without critical should fail.")
	}
}

func TestApplyOverridesBadPreset(t *testing.T) {
	err := catalog.ApplyOverrides(&catalog.OverrideFile{
		Presets: map[string]catalog.ForestConfig{
			"resource": {Contamination: 0.9, Trees: 10, MaxFeatures: 1},
		},
	})
	if err == nil {
		t.Fatal("contamination 0.9 should be rejected.")
	}
	if catalog.ForestConfigs[catalog.AnomalyResource].Contamination == 0.9 {
		t.Fatal("rejected preset was applied anyway.")
	}
}

func TestLoadOverrides(t *testing.T) {
	m, _ := catalog.Lookup("node_cpu_utilization")
	origWarn := m.Thresholds.Warning
	origCrit := m.Thresholds.Critical

	path := filepath.Join(t.TempDir(), "overrides.yaml")
	doc := `
metrics:
  node_cpu_utilization:
    warning: 60
    critical: 80
  pod_memory_swap:
    disable: true
presets:
  performance:
    contamination: 0.1
    trees: 120
    max_features: 1.0
    seed: 42
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := catalog.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides: %+v.", err)
	}

	if m.Thresholds.Warning != 60 || m.Thresholds.Critical != 80 {
		t.Fatalf("thresholds not overridden, got %v/%v.",
			m.Thresholds.Warning, m.Thresholds.Critical)
	}
	if got := catalog.ForestConfigs[catalog.AnomalyPerformance].Trees; got != 120 {
		t.Fatalf("performance preset trees = %d, want 120.", got)
	}

	if _, ok := catalog.Queries([]string{"pod_memory_swap"})["pod_memory_swap"]; ok {
		t.Fatal("disabled metric still resolves a query.")
	}
	for _, name := range catalog.TargetMetricsEnhanced {
		if name == "pod_memory_swap" {
			t.Fatal("disabled metric still in the target collection.")
		}
	}

	// Put the shared catalog back for other tests.
	if err := catalog.ApplyOverrides(&catalog.OverrideFile{
		Metrics: map[string]catalog.MetricOverride{
			"node_cpu_utilization": {Warning: &origWarn, Critical: &origCrit},
		},
	}); err != nil {
		t.Fatalf("restore: %+v.", err)
	}
}
