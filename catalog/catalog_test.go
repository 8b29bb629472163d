package catalog_test

import (
	"strings"
	"testing"

	"selfheal.io/anomaly/catalog"
)

func TestCatalogLookup(t *testing.T) {
	m, ok := catalog.Lookup("node_cpu_utilization")
	if !ok {
		t.Fatal("node_cpu_utilization missing from catalog.")
	}
	if m.Category != catalog.CategoryCPU {
		t.Fatalf("node_cpu_utilization category = %s, want cpu.", m.Category)
	}
	if !m.Thresholds.Has() {
		t.Fatal("node_cpu_utilization should carry thresholds.")
	}
	if m.Thresholds.Warning >= m.Thresholds.Critical {
		t.Fatalf("warning %v should sit below critical %v.",
			m.Thresholds.Warning, m.Thresholds.Critical)
	}

	if _, ok := catalog.Lookup("no_such_metric"); ok {
		t.Fatal("Lookup invented a metric.")
	}
}

func TestCatalogShape(t *testing.T) {
	all := catalog.All()
	if len(all) < 30 {
		t.Fatalf("catalog has %d metrics, want at least 30.", len(all))
	}
	for name, m := range all {
		if m.Name != name {
			t.Fatalf("metric keyed %q names itself %q.", name, m.Name)
		}
		if m.Query == "" {
			t.Fatalf("metric %q has no query.", name)
		}
		if m.Thresholds.Has() && m.Thresholds.Warning >= m.Thresholds.Critical {
			t.Fatalf("metric %q: warning %v not below critical %v.",
				name, m.Thresholds.Warning, m.Thresholds.Critical)
		}
	}
}

func TestQueriesSkipsUnknown(t *testing.T) {
	got := catalog.Queries([]string{"node_cpu_utilization", "bogus"})
	if len(got) != 1 {
		t.Fatalf("Queries returned %d entries, want 1.", len(got))
	}
	if _, ok := got["node_cpu_utilization"]; !ok {
		t.Fatal("Queries dropped a known metric.")
	}
}

func TestGetThresholds(t *testing.T) {
	got := catalog.GetThresholds([]string{"node_cpu_utilization", "node_disk_iops"})
	if _, ok := got["node_cpu_utilization"]; !ok {
		t.Fatal("thresholds missing for node_cpu_utilization.")
	}
	// node_disk_iops deliberately has no thresholds.
	if _, ok := got["node_disk_iops"]; ok {
		t.Fatal("node_disk_iops should have no thresholds.")
	}
}

func TestCollections(t *testing.T) {
	if len(catalog.TargetMetricsEnhanced) < 30 {
		t.Fatalf("target set has %d metrics, want at least 30.",
			len(catalog.TargetMetricsEnhanced))
	}
	for _, name := range catalog.TargetMetricsEnhanced {
		if _, ok := catalog.Lookup(name); !ok {
			t.Fatalf("target set references unknown metric %q.", name)
		}
	}
	for _, name := range catalog.ControlPlaneHealthMetrics {
		m, _ := catalog.Lookup(name)
		if m.Anomaly != catalog.AnomalyControlPlane {
			t.Fatalf("%q in control-plane collection but categorized %s.",
				name, m.Anomaly)
		}
	}
	for _, name := range catalog.StabilityMetrics {
		m, _ := catalog.Lookup(name)
		if m.Anomaly != catalog.AnomalyStability {
			t.Fatalf("%q in stability collection but categorized %s.", name, m.Anomaly)
		}
	}
}

func TestByAnomalyCategorySorted(t *testing.T) {
	metrics := catalog.ByAnomalyCategory(catalog.AnomalyNetwork)
	if len(metrics) < 4 {
		t.Fatalf("network grouping has %d metrics, want at least 4.", len(metrics))
	}
	for i := 1; i < len(metrics); i++ {
		if metrics[i-1].Name >= metrics[i].Name {
			t.Fatalf("grouping not name-sorted around %q.", metrics[i].Name)
		}
	}
}

func TestExpandQuery(t *testing.T) {
	m, _ := catalog.Lookup("pod_cpu_utilization")
	scoped := m.ExpandQuery("self-healing-platform")
	if !strings.Contains(scoped, `namespace="self-healing-platform",`) {
		t.Fatalf("namespace matcher missing from %q.", scoped)
	}
	if strings.Contains(scoped, catalog.NSSlot) {
		t.Fatal("namespace slot survived expansion.")
	}

	wide := m.ExpandQuery("")
	if strings.Contains(wide, "namespace=") || strings.Contains(wide, catalog.NSSlot) {
		t.Fatalf("cluster-wide expansion kept a namespace matcher: %q.", wide)
	}

	node, _ := catalog.Lookup("node_cpu_utilization")
	if node.ExpandQuery("x") != node.Query {
		t.Fatal("node query without a slot should pass through untouched.")
	}
}

func TestFingerprintStable(t *testing.T) {
	a := catalog.Fingerprint()
	b := catalog.Fingerprint()
	if a != b {
		t.Fatalf("fingerprint not stable: %x vs %x.", a, b)
	}
	if a == 0 {
		t.Fatal("fingerprint is zero.")
	}
}

func TestForestPresets(t *testing.T) {
	seen := map[int64]struct{}{}
	for _, cat := range catalog.AnomalyCategories {
		cfg, ok := catalog.ForestConfigs[cat]
		if !ok {
			t.Fatalf("no preset for category %s.", cat)
		}
		if cfg.Contamination <= 0 || cfg.Contamination >= 0.5 {
			t.Fatalf("preset %s contamination %v out of range.", cat, cfg.Contamination)
		}
		if cfg.Trees <= 0 {
			t.Fatalf("preset %s has no trees.", cat)
		}
		seen[cfg.Seed] = struct{}{}
	}
	if len(seen) != 1 {
		t.Fatal("presets should share one seed for reproducible runs.")
	}
	if catalog.DefaultForestConfig() != catalog.ForestConfigs[catalog.AnomalyResource] {
		t.Fatal("default preset should be the resource preset.")
	}
}
