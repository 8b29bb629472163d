package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	analyzer "selfheal.io/anomaly/analyzers"
	"selfheal.io/anomaly/catalog"
	"selfheal.io/anomaly/forest"
)

// TrainedModel couples a fitted pipeline with its training summary.
type TrainedModel struct {
	Name        string
	Category    catalog.AnomalyCategory
	Combined    bool
	Pipeline    *forest.Pipeline
	AnomalyRate float64
}

// categoryFeatures selects the normalized columns of one model grouping
// that actually made it into the feature table.
func categoryFeatures(features *analyzer.Frame, cat catalog.AnomalyCategory) []string {
	var cols []string
	for _, m := range catalog.ByAnomalyCategory(cat) {
		col := m.Name + analyzer.SuffixNormalized
		if features.Has(col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// trainCategoryModels fits one pipeline per anomaly category on that
// category's normalized features. Categories with fewer than two
// available features are skipped; one metric alone isolates nothing.
func trainCategoryModels(features *analyzer.Frame) (map[catalog.AnomalyCategory]*TrainedModel, error) {
	models := map[catalog.AnomalyCategory]*TrainedModel{}
	for _, cat := range catalog.AnomalyCategories {
		cols := categoryFeatures(features, cat)
		if len(cols) < 2 {
			glog.Warningf("category %s: %d features available, skipping", cat, len(cols))
			continue
		}

		x, err := features.RowSlices(cols)
		if err != nil {
			return nil, err
		}
		pipeline := forest.NewPipeline(cols, catalog.ForestConfigs[cat])
		if err := pipeline.Fit(x); err != nil {
			return nil, errors.WithMessagef(err, "training %s model", cat)
		}
		rate, err := pipeline.AnomalyRate(x)
		if err != nil {
			return nil, err
		}

		glog.Infof("trained %s model: %d features, anomaly rate %.2f%%", cat, len(cols), rate)
		models[cat] = &TrainedModel{
			Name:        fmt.Sprintf("anomaly-detector-%s", cat),
			Category:    cat,
			Pipeline:    pipeline,
			AnomalyRate: rate,
		}
	}
	return models, nil
}

// trainCombinedModel fits the single general detector on every
// normalized column, with the default preset. This is the model the
// serving path loads.
func trainCombinedModel(features *analyzer.Frame) (*TrainedModel, error) {
	var cols []string
	for _, c := range features.Columns() {
		if strings.HasSuffix(c, analyzer.SuffixNormalized) {
			cols = append(cols, c)
		}
	}
	if len(cols) < 2 {
		return nil, errors.WithStack(errors.Errorf(
			"combined model needs at least 2 normalized features, got %d.", len(cols),
		))
	}

	x, err := features.RowSlices(cols)
	if err != nil {
		return nil, err
	}
	pipeline := forest.NewPipeline(cols, catalog.DefaultForestConfig())
	if err := pipeline.Fit(x); err != nil {
		return nil, errors.WithMessage(err, "training combined model")
	}
	rate, err := pipeline.AnomalyRate(x)
	if err != nil {
		return nil, err
	}

	glog.Infof("trained combined model: %d features, anomaly rate %.2f%%", len(cols), rate)
	return &TrainedModel{
		Name:        "anomaly-detector",
		Combined:    true,
		Pipeline:    pipeline,
		AnomalyRate: rate,
	}, nil
}

// modelMetadata is the sidecar written next to every artifact.
type modelMetadata struct {
	Category           string               `json:"category,omitempty"`
	Combined           bool                 `json:"combined,omitempty"`
	Features           []string             `json:"features"`
	Config             catalog.ForestConfig `json:"config"`
	AnomalyRate        float64              `json:"anomaly_rate"`
	Checksum           uint64               `json:"checksum"`
	CatalogFingerprint uint64               `json:"catalog_fingerprint"`
	TrainedAt          time.Time            `json:"trained_at"`
}

// saveModel writes <dir>/<name>/model.json plus metadata.json, the layout
// the serving runtime mounts.
func saveModel(dir string, m *TrainedModel) error {
	modelDir := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return errors.WithStack(err)
	}

	raw, err := m.Pipeline.Save()
	if err != nil {
		return err
	}
	modelPath := filepath.Join(modelDir, "model.json")
	if err := os.WriteFile(modelPath, raw, 0o644); err != nil {
		return errors.WithStack(err)
	}

	meta := modelMetadata{
		Features:           m.Pipeline.Features,
		Config:             m.Pipeline.Forest.Config,
		AnomalyRate:        m.AnomalyRate,
		Checksum:           forest.Checksum(raw),
		CatalogFingerprint: m.Pipeline.CatalogFingerprint,
		TrainedAt:          time.Now().UTC(),
	}
	if m.Combined {
		meta.Combined = true
	} else {
		meta.Category = m.Category.String()
	}
	metaRaw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "metadata.json"), metaRaw, 0o644); err != nil {
		return errors.WithStack(err)
	}

	glog.Infof("saved %s (%d bytes) to %s", m.Name, len(raw), modelPath)
	return nil
}

// saveModels persists the combined model and every category model.
func saveModels(dir string, combined *TrainedModel, perCategory map[catalog.AnomalyCategory]*TrainedModel) error {
	if combined != nil {
		if err := saveModel(dir, combined); err != nil {
			return err
		}
	}
	for _, cat := range catalog.AnomalyCategories {
		if m, ok := perCategory[cat]; ok {
			if err := saveModel(dir, m); err != nil {
				return err
			}
		}
	}
	return nil
}
