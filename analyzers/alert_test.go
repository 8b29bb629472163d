package analyzer_test

import (
	"math"
	"testing"
	"time"

	analyzer "selfheal.io/anomaly/analyzers"
)

func TestEvaluateThresholds(t *testing.T) {
	times := []time.Time{t0, t0.Add(5 * time.Minute)}
	frame := analyzer.NewFrame(times)
	// Ends past critical (85).
	if err := frame.AddColumn("node_cpu_utilization", []float64{50, 91}); err != nil {
		t.Fatal(err)
	}
	// Ends in the warning band (80..90).
	if err := frame.AddColumn("node_memory_utilization", []float64{50, 83}); err != nil {
		t.Fatal(err)
	}
	// No catalog thresholds, must not alert.
	if err := frame.AddColumn("node_disk_iops", []float64{100, 100000}); err != nil {
		t.Fatal(err)
	}
	// Not a catalog metric at all.
	if err := frame.AddColumn("custom", []float64{0, 1e9}); err != nil {
		t.Fatal(err)
	}

	alerts := analyzer.EvaluateThresholds(frame)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2.", len(alerts))
	}

	byMetric := map[string]analyzer.Alert{}
	for _, a := range alerts {
		byMetric[a.Metric] = a
	}
	cpu, ok := byMetric["node_cpu_utilization"]
	if !ok || cpu.Level != analyzer.LevelCritical {
		t.Fatalf("cpu alert = %+v, want critical.", cpu)
	}
	if cpu.Threshold != 85 || cpu.Value != 91 {
		t.Fatalf("cpu alert carries %v/%v, want 91/85.", cpu.Value, cpu.Threshold)
	}
	memory, ok := byMetric["node_memory_utilization"]
	if !ok || memory.Level != analyzer.LevelWarning {
		t.Fatalf("memory alert = %+v, want warning.", memory)
	}
	if !cpu.Timestamp.Equal(times[1]) {
		t.Fatal("alert should carry the newest row's timestamp.")
	}
}

func TestEvaluateThresholdsSkipsNaN(t *testing.T) {
	frame := analyzer.NewFrame([]time.Time{t0})
	if err := frame.AddColumn("node_cpu_utilization", []float64{math.NaN()}); err != nil {
		t.Fatal(err)
	}
	if alerts := analyzer.EvaluateThresholds(frame); len(alerts) != 0 {
		t.Fatalf("NaN cell alerted: %+v.", alerts)
	}
}

func TestEvaluateThresholdsEmpty(t *testing.T) {
	frame := analyzer.NewFrame(nil)
	if alerts := analyzer.EvaluateThresholds(frame); alerts != nil {
		t.Fatal("empty frame should produce no alerts.")
	}
}

func TestLevelString(t *testing.T) {
	if analyzer.LevelWarning.String() != "warning" || analyzer.LevelCritical.String() != "critical" {
		t.Fatal("level names changed, the sink's line protocol depends on them.")
	}
}
