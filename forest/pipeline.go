package forest

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"selfheal.io/anomaly/catalog"
)

// modelFormat is bumped whenever the serialized layout changes.
const modelFormat = 1

// Pipeline is the scaling step plus the forest, with the feature column
// names baked in so serving can order its inputs the same way training
// did.
type Pipeline struct {
	Format   int      `json:"format"`
	Features []string `json:"features"`
	Scaler   *Scaler  `json:"scaler"`
	Forest   *Forest  `json:"forest"`

	// CatalogFingerprint pins the catalog the model was trained against.
	CatalogFingerprint uint64 `json:"catalog_fingerprint"`
}

// NewPipeline builds an untrained pipeline over the named features.
func NewPipeline(features []string, cfg catalog.ForestConfig) *Pipeline {
	return &Pipeline{
		Format:             modelFormat,
		Features:           features,
		Scaler:             &Scaler{},
		Forest:             New(cfg),
		CatalogFingerprint: catalog.Fingerprint(),
	}
}

// Fit scales the training matrix and grows the forest on it.
func (p *Pipeline) Fit(x [][]float64) error {
	if err := p.Scaler.Fit(x); err != nil {
		return err
	}
	scaled, err := p.Scaler.Transform(x)
	if err != nil {
		return err
	}
	return p.Forest.Fit(scaled)
}

// Score returns anomaly scores in (0, 1], higher is more anomalous.
func (p *Pipeline) Score(x [][]float64) ([]float64, error) {
	scaled, err := p.Scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	return p.Forest.Score(scaled), nil
}

// Predict labels rows -1 (anomaly) or 1 (inlier).
func (p *Pipeline) Predict(x [][]float64) ([]int, error) {
	scaled, err := p.Scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	return p.Forest.Predict(scaled), nil
}

// AnomalyRate is the share of rows labelled anomalous, in percent.
func (p *Pipeline) AnomalyRate(x [][]float64) (float64, error) {
	labels, err := p.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(labels) == 0 {
		return 0, nil
	}
	anomalies := 0
	for _, l := range labels {
		if l == -1 {
			anomalies++
		}
	}
	return 100 * float64(anomalies) / float64(len(labels)), nil
}

// Save serializes the trained pipeline to JSON bytes.
func (p *Pipeline) Save() ([]byte, error) {
	if len(p.Forest.Trees) == 0 {
		return nil, errors.WithStack(errors.New("save of an untrained pipeline."))
	}
	raw, err := json.Marshal(p)
	return raw, errors.WithStack(err)
}

// Load restores a pipeline saved by Save.
func Load(raw []byte) (*Pipeline, error) {
	p := new(Pipeline)
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, errors.WithStack(err)
	}
	if p.Format != modelFormat {
		return nil, errors.WithStack(errors.Errorf(
			"model format %d, this build reads %d.", p.Format, modelFormat,
		))
	}
	return p, nil
}

// Checksum hashes serialized model bytes. Stored in the sidecar metadata
// so serving can spot a torn or hand-edited artifact.
func Checksum(raw []byte) uint64 {
	return xxhash.Sum64(raw)
}
