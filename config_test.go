package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"selfheal.io/anomaly/collector"
)

var pipelineYaml = `
collector:
  type: prometheus
  opt:
    address: http://prometheus:9090
    namespace: self-healing-platform
    workers: 2
lookback: 24h
step: 5m
aggregator: mean
model_dir: /tmp/models
include_control_plane: true
interval: 6h
influx:
  url: http://influx:8086
  token: t0ken
  org: selfheal
  bucket: anomaly
`

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, pipelineYaml))
	if err != nil {
		t.Fatalf("LoadConfig: %+v.", err)
	}
	if cfg.Lookback.Std() != 24*time.Hour {
		t.Fatalf("lookback = %s, want 24h.", cfg.Lookback.Std())
	}
	if cfg.Step.Std() != 5*time.Minute {
		t.Fatalf("step = %s, want 5m.", cfg.Step.Std())
	}
	if !cfg.IncludeControlPlane {
		t.Fatal("include_control_plane not parsed.")
	}
	if cfg.Influx == nil || cfg.Influx.Bucket != "anomaly" {
		t.Fatalf("influx section not parsed: %+v.", cfg.Influx)
	}

	col, err := cfg.Collector.newCollector()
	if err != nil {
		t.Fatalf("newCollector: %+v.", err)
	}
	if _, ok := col.(*collector.PromCollector); !ok {
		t.Fatalf("collector is %T, want *collector.PromCollector.", col)
	}
}

func TestLoadConfigDefaultsAggregator(t *testing.T) {
	doc := `
collector:
  type: node
lookback: 1h
step: 1m
model_dir: /tmp/models
`
	cfg, err := LoadConfig(writeConfig(t, doc))
	if err != nil {
		t.Fatalf("LoadConfig: %+v.", err)
	}
	if cfg.Aggregator != "mean" {
		t.Fatalf("aggregator defaulted to %q, want mean.", cfg.Aggregator)
	}
	col, err := cfg.Collector.newCollector()
	if err != nil {
		t.Fatalf("newCollector: %+v.", err)
	}
	if _, ok := col.(*collector.NodeCollector); !ok {
		t.Fatalf("collector is %T, want *collector.NodeCollector.", col)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"missing model_dir": `
collector:
  type: node
lookback: 1h
step: 1m
`,
		"step above lookback": `
collector:
  type: node
lookback: 1m
step: 1h
model_dir: /tmp/models
`,
		"unknown aggregator": `
collector:
  type: node
lookback: 1h
step: 1m
aggregator: median
model_dir: /tmp/models
`,
		"bad duration": `
collector:
  type: node
lookback: soon
step: 1m
model_dir: /tmp/models
`,
	}
	for name, doc := range cases {
		if _, err := LoadConfig(writeConfig(t, doc)); err == nil {
			t.Fatalf("%s: config accepted.", name)
		}
	}
}

func TestCollectorConfigUnknownType(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
collector:
  type: carrier-pigeon
lookback: 1h
step: 1m
model_dir: /tmp/models
`))
	if err != nil {
		t.Fatalf("LoadConfig: %+v.", err)
	}
	if _, err := cfg.Collector.newCollector(); err == nil {
		t.Fatal("unknown collector type accepted.")
	}
}

func TestPromCollectorNeedsAddress(t *testing.T) {
	if _, err := collector.NewPromCollector(collector.PromOpts{}); err == nil {
		t.Fatal("prometheus collector without address accepted.")
	}
}
