package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	analyzer "selfheal.io/anomaly/analyzers"
	"selfheal.io/anomaly/collector"
)

// RawMessage defers YAML unmarshalling so the collector section can be
// decoded into the option type its "type" field selects.
type RawMessage struct {
	unmarshal func(interface{}) error
}

func (msg *RawMessage) UnmarshalYAML(unmarshal func(interface{}) error) error {
	msg.unmarshal = unmarshal
	return nil
}

func (msg *RawMessage) Unmarshal(v interface{}) error {
	if msg.unmarshal == nil {
		return errors.WithStack(errors.New("empty config section."))
	}
	return msg.unmarshal(v)
}

// Duration parses "24h" style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.WithStack(err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// CollectorConfig selects and configures the sample source. Every
// collector signs in at newCollector.
type CollectorConfig struct {
	Type string     `yaml:"type"`
	Opt  RawMessage `yaml:"opt"`
}

func (c *CollectorConfig) newCollector() (collector.Collector, error) {
	switch c.Type {
	case "prometheus":
		opt := collector.PromOpts{}
		if err := c.Opt.Unmarshal(&opt); err != nil {
			return nil, err
		}
		return collector.NewPromCollector(opt)
	case "node":
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		return collector.NewNodeCollector(hostname), nil
	default:
		return nil, errors.WithStack(
			fmt.Errorf("unrecognized collector type %q.", c.Type),
		)
	}
}

// InfluxConfig points at the results bucket. Leaving it out skips the
// sink entirely.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Config is the pipeline's YAML configuration.
type Config struct {
	Collector CollectorConfig `yaml:"collector"`

	// Lookback and Step bound the training window, e.g. 24h at 5m.
	Lookback Duration `yaml:"lookback"`
	Step     Duration `yaml:"step"`

	// Metrics to collect. Empty means the enhanced target set, with the
	// control-plane collection appended when IncludeControlPlane is on.
	Metrics             []string `yaml:"metrics"`
	IncludeControlPlane bool     `yaml:"include_control_plane"`

	// Aggregator collapses multiple series per time bucket; one of
	// mean, max, min. Empty means mean.
	Aggregator string `yaml:"aggregator"`

	// ModelDir is where trained artifacts land, one subdirectory per
	// model, serving-friendly layout.
	ModelDir string `yaml:"model_dir"`

	// CatalogOverrides optionally points at a threshold/preset override
	// file applied before anything runs.
	CatalogOverrides string `yaml:"catalog_overrides"`

	// Interval re-runs the whole pipeline periodically; zero runs once.
	Interval Duration `yaml:"interval"`

	Influx *InfluxConfig `yaml:"influx"`
}

func (c *Config) validate() error {
	if c.Lookback.Std() <= 0 || c.Step.Std() <= 0 {
		return errors.WithStack(errors.New("config needs positive lookback and step."))
	}
	if c.Step.Std() > c.Lookback.Std() {
		return errors.WithStack(errors.New("step larger than lookback."))
	}
	if c.ModelDir == "" {
		return errors.WithStack(errors.New("config needs model_dir."))
	}
	if c.Aggregator == "" {
		c.Aggregator = "mean"
	}
	if _, ok := analyzer.AggregationFunc[c.Aggregator]; !ok {
		return errors.WithStack(
			fmt.Errorf("unrecognized aggregator %q.", c.Aggregator),
		)
	}
	return nil
}

// LoadConfig reads and validates the pipeline configuration.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
