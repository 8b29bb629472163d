package forest

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"selfheal.io/anomaly/catalog"
)

// defaultSubsample is the auto sub-sample size. 256 is the isolation
// forest paper's psi; larger samples sharpen nothing.
const defaultSubsample = 256

// Forest is an isolation forest. Scores are in (0, 1], higher is more
// anomalous; the decision threshold is set from the training scores so
// that roughly Contamination of them land above it.
type Forest struct {
	Config    catalog.ForestConfig `json:"config"`
	Trees     []*node              `json:"trees"`
	Subsample int                  `json:"subsample"`
	Threshold float64              `json:"threshold"`
}

// New builds an untrained forest from a preset.
func New(cfg catalog.ForestConfig) *Forest {
	return &Forest{Config: cfg}
}

// Fit grows the trees and calibrates the decision threshold.
func (f *Forest) Fit(x [][]float64) error {
	if len(x) < 2 {
		return errors.WithStack(errors.Errorf(
			"forest fit needs at least 2 samples, got %d.", len(x),
		))
	}
	cfg := f.Config
	if cfg.Trees <= 0 {
		return errors.WithStack(errors.New("forest preset has no trees."))
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 0.5 {
		return errors.WithStack(errors.Errorf(
			"contamination must be in (0, 0.5), got %v.", cfg.Contamination,
		))
	}

	features := len(x[0])
	perTree := int(math.Ceil(cfg.MaxFeatures * float64(features)))
	if cfg.MaxFeatures <= 0 || perTree > features {
		perTree = features
	}
	if perTree < 1 {
		perTree = 1
	}

	sub := cfg.MaxSamples
	if sub <= 0 || sub > len(x) {
		sub = defaultSubsample
		if sub > len(x) {
			sub = len(x)
		}
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sub))))
	rng := rand.New(rand.NewSource(cfg.Seed))

	f.Subsample = sub
	f.Trees = make([]*node, 0, cfg.Trees)
	rows := make([]int, sub)
	all := rng.Perm(features)
	for t := 0; t < cfg.Trees; t++ {
		for i := range rows {
			rows[i] = rng.Intn(len(x))
		}
		var subset []int
		if perTree == features {
			subset = all
		} else {
			perm := rng.Perm(features)
			subset = perm[:perTree]
		}
		f.Trees = append(f.Trees, buildTree(x, rows, subset, 0, maxDepth, rng))
	}

	scores := f.Score(x)
	sort.Float64s(scores)
	f.Threshold = stat.Quantile(1-cfg.Contamination, stat.Empirical, scores, nil)
	return nil
}

// ScoreOne returns the anomaly score of a single sample.
func (f *Forest) ScoreOne(sample []float64) float64 {
	if len(f.Trees) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.pathLength(sample, 0)
	}
	mean := sum / float64(len(f.Trees))
	return math.Pow(2, -mean/avgPathLength(float64(f.Subsample)))
}

// Score returns anomaly scores for every row.
func (f *Forest) Score(x [][]float64) []float64 {
	scores := make([]float64, len(x))
	for i, row := range x {
		scores[i] = f.ScoreOne(row)
	}
	return scores
}

// Predict labels rows sklearn-style: -1 for anomalies, 1 for inliers.
func (f *Forest) Predict(x [][]float64) []int {
	labels := make([]int, len(x))
	for i, s := range f.Score(x) {
		if s > f.Threshold {
			labels[i] = -1
		} else {
			labels[i] = 1
		}
	}
	return labels
}
