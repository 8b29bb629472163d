package catalog

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// MetricOverride adjusts or disables one catalog entry from config.
// Warning and critical must come together; a nil pair leaves the catalog
// thresholds untouched.
type MetricOverride struct {
	Disable  bool     `yaml:"disable"`
	Warning  *float64 `yaml:"warning"`
	Critical *float64 `yaml:"critical"`
}

// OverrideFile is the on-disk shape of a catalog override.
type OverrideFile struct {
	Metrics map[string]MetricOverride `yaml:"metrics"`
	Presets map[string]ForestConfig   `yaml:"presets"`
}

// ApplyOverrides mutates the catalog in place. Unknown metric or preset
// names are an error so a typo doesn't silently keep a default.
func ApplyOverrides(o *OverrideFile) error {
	for name, ov := range o.Metrics {
		m, ok := allMetrics[name]
		if !ok {
			return errors.WithStack(
				fmt.Errorf("override for unknown metric %q.", name),
			)
		}
		if ov.Disable {
			m.disabledVia = "override"
		}
		if (ov.Warning == nil) != (ov.Critical == nil) {
			return errors.WithStack(
				fmt.Errorf("override for %q must set warning and critical together.", name),
			)
		}
		if ov.Warning != nil {
			m.Thresholds = NewThresholds(*ov.Warning, *ov.Critical)
		}
	}

	for name, cfg := range o.Presets {
		cat, ok := anomalyCategoryByName(name)
		if !ok {
			return errors.WithStack(
				fmt.Errorf("preset override for unknown category %q.", name),
			)
		}
		if cfg.Contamination <= 0 || cfg.Contamination >= 0.5 {
			return errors.WithStack(
				fmt.Errorf("preset %q: contamination must be in (0, 0.5), got %v.", name, cfg.Contamination),
			)
		}
		ForestConfigs[cat] = cfg
	}
	rebuildCollections()
	return nil
}

// LoadOverrides reads and applies a YAML override file.
func LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	o := new(OverrideFile)
	if err := yaml.Unmarshal(raw, o); err != nil {
		return errors.WithStack(err)
	}
	return ApplyOverrides(o)
}

func anomalyCategoryByName(name string) (AnomalyCategory, bool) {
	for cat, n := range anomalyCategoryNames {
		if n == name {
			return cat, true
		}
	}
	return 0, false
}

// rebuildCollections refreshes the named collections after overrides
// disabled metrics.
func rebuildCollections() {
	TargetMetricsEnhanced = nil
	ResourceExhaustionMetrics = nil
	StabilityMetrics = nil
	PerformanceMetrics = nil
	NetworkMetrics = nil
	ControlPlaneHealthMetrics = nil
	buildCollections()
}
