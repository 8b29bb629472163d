package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	analyzer "selfheal.io/anomaly/analyzers"
	"selfheal.io/anomaly/catalog"
	"selfheal.io/anomaly/collector"
)

// This file drives the pipeline: collect the catalog's series, engineer
// the feature table, train the detectors, persist the artifacts and push
// results to the sink. One-shot by default, periodic when the config
// sets an interval.

// PipelineResult is what one run produced.
type PipelineResult struct {
	Features *analyzer.Frame
	Combined *TrainedModel
	Category map[catalog.AnomalyCategory]*TrainedModel
	Alerts   []analyzer.Alert
	Scores   []ScoredPoint
}

// RunOnce executes a single collect-train-persist cycle.
func RunOnce(ctx context.Context, cfg *Config) (*PipelineResult, error) {
	col, err := cfg.Collector.newCollector()
	if err != nil {
		return nil, err
	}

	names := cfg.Metrics
	if len(names) == 0 {
		names = append(names, catalog.TargetMetricsEnhanced...)
		if cfg.IncludeControlPlane {
			names = append(names, catalog.ControlPlaneHealthMetrics...)
		}
	}

	window := collector.LookbackWindow(cfg.Lookback.Std(), cfg.Step.Std())
	glog.Infof("collecting %d metrics over %s at %s", len(names), cfg.Lookback.Std(), cfg.Step.Std())
	samples, err := col.CollectRange(ctx, names, window)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.WithStack(errors.New("collection produced no samples."))
	}
	glog.Infof("collected %d samples", len(samples))

	raw, err := analyzer.Pivot(samples, cfg.Step.Std(), analyzer.AggregationFunc[cfg.Aggregator])
	if err != nil {
		return nil, err
	}
	features, err := analyzer.Engineer(raw)
	if err != nil {
		return nil, err
	}
	glog.Infof("feature table: %d rows x %d columns", features.Rows(), len(features.Columns()))

	alerts := analyzer.EvaluateThresholds(raw)
	for _, a := range alerts {
		glog.Warningf("threshold alert: %s %s (value %.3f, threshold %.3f)",
			a.Metric, a.Level, a.Value, a.Threshold)
	}

	perCategory, err := trainCategoryModels(features)
	if err != nil {
		return nil, err
	}
	combined, err := trainCombinedModel(features)
	if err != nil {
		return nil, err
	}

	logTopCorrelations(features, combined)

	if err := saveModels(cfg.ModelDir, combined, perCategory); err != nil {
		return nil, err
	}

	scores, err := scoreFeatures(features, combined)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		Features: features,
		Combined: combined,
		Category: perCategory,
		Alerts:   alerts,
		Scores:   scores,
	}

	if cfg.Influx != nil {
		rates := map[catalog.AnomalyCategory]float64{}
		for cat, m := range perCategory {
			rates[cat] = m.AnomalyRate
		}
		InfluxWrite(cfg.Influx, scores, rates, alerts)
	}
	return result, nil
}

// scoreFeatures runs the combined model back over its own training rows,
// giving the sink one scored point per timestamp.
func scoreFeatures(features *analyzer.Frame, combined *TrainedModel) ([]ScoredPoint, error) {
	x, err := features.RowSlices(combined.Pipeline.Features)
	if err != nil {
		return nil, err
	}
	scores, err := combined.Pipeline.Score(x)
	if err != nil {
		return nil, err
	}
	labels, err := combined.Pipeline.Predict(x)
	if err != nil {
		return nil, err
	}

	points := make([]ScoredPoint, len(scores))
	for i := range scores {
		points[i] = ScoredPoint{
			Model:     combined.Name,
			Timestamp: features.Times[i],
			Score:     scores[i],
			Anomaly:   labels[i] == -1,
		}
	}
	return points, nil
}

func logTopCorrelations(features *analyzer.Frame, combined *TrainedModel) {
	pairs, err := analyzer.TopCorrelations(features, combined.Pipeline.Features, 5)
	if err != nil {
		glog.Warningf("correlation summary: %+v", err)
		return
	}
	for _, p := range pairs {
		glog.V(1).Infof("correlated features: %s ~ %s (r=%.2f)", p.A, p.B, p.R)
	}
}

// Run executes the pipeline once, or on a ticker when the config asks
// for periodic retraining. SIGINT/SIGTERM stop the loop after the
// current cycle.
func Run(cfg *Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errorCh := make(chan error, 1)
	doneCh := make(chan struct{}, 1)
	runCycle := func() {
		started := time.Now()
		if _, err := RunOnce(ctx, cfg); err != nil {
			errorCh <- err
			return
		}
		glog.Infof("pipeline cycle done in %s", time.Since(started).Round(time.Second))
		doneCh <- struct{}{}
	}

	stopper := make(chan os.Signal, 1)
	signal.Notify(stopper, os.Interrupt, syscall.SIGTERM)

	go runCycle()
	if cfg.Interval.Std() <= 0 {
		select {
		case err := <-errorCh:
			return err
		case <-doneCh:
			return nil
		case <-stopper:
			cancel()
			return nil
		}
	}

	ticker := time.NewTicker(cfg.Interval.Std())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			go runCycle()
		case <-doneCh:
		case err := <-errorCh:
			return err
		case <-stopper:
			cancel()
			return nil
		}
	}
}
