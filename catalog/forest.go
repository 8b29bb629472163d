package catalog

// ForestConfig is the hyperparameter preset of one isolation-forest
// pipeline. MaxSamples <= 0 means auto, min(256, n).
type ForestConfig struct {
	Contamination float64 `yaml:"contamination" json:"contamination"`
	Trees         int     `yaml:"trees" json:"trees"`
	MaxSamples    int     `yaml:"max_samples" json:"max_samples"`
	MaxFeatures   float64 `yaml:"max_features" json:"max_features"`
	Seed          int64   `yaml:"seed" json:"seed"`
}

// ForestConfigs maps each anomaly category to its preset.
//
// Contamination follows how noisy each signal family is in practice:
// stability counters sit at zero almost always, so the share of real
// outliers is tiny; performance latencies wobble constantly, so a larger
// share keeps the threshold from flagging ordinary jitter.
var ForestConfigs = map[AnomalyCategory]ForestConfig{
	AnomalyResource: {
		Contamination: 0.05,
		Trees:         200,
		MaxSamples:    0,
		MaxFeatures:   1.0,
		Seed:          42,
	},
	AnomalyStability: {
		Contamination: 0.02,
		Trees:         150,
		MaxSamples:    0,
		MaxFeatures:   1.0,
		Seed:          42,
	},
	AnomalyPerformance: {
		Contamination: 0.08,
		Trees:         250,
		MaxSamples:    0,
		MaxFeatures:   0.8,
		Seed:          42,
	},
	AnomalyNetwork: {
		Contamination: 0.03,
		Trees:         150,
		MaxSamples:    0,
		MaxFeatures:   1.0,
		Seed:          42,
	},
	AnomalyControlPlane: {
		Contamination: 0.01,
		Trees:         100,
		MaxSamples:    0,
		MaxFeatures:   1.0,
		Seed:          42,
	},
}

// DefaultForestConfig is the preset for the combined model. The resource
// preset is the most balanced of the set.
func DefaultForestConfig() ForestConfig {
	return ForestConfigs[AnomalyResource]
}
