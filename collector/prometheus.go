package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"selfheal.io/anomaly/catalog"
)

// PromOpts configures a PromCollector.
type PromOpts struct {
	// Address of the Prometheus HTTP API, e.g. http://prometheus:9090.
	Address string `yaml:"address"`
	// Namespace narrows pod-scoped queries; empty means cluster-wide.
	Namespace string `yaml:"namespace"`
	// Workers bounds concurrent range queries. Defaults to 4.
	Workers int `yaml:"workers"`
	// QueryTimeout bounds one range query. Defaults to 30s.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// PromCollector runs the catalog's range queries against a Prometheus
// backend. One failing query is logged and skipped so a single broken
// recording rule doesn't starve the whole feature table.
type PromCollector struct {
	api       promv1.API
	namespace string
	workers   int
	timeout   time.Duration
}

// NewPromCollector dials nothing; the Prometheus client is HTTP-lazy, so
// errors surface on the first query.
func NewPromCollector(opts PromOpts) (*PromCollector, error) {
	if opts.Address == "" {
		return nil, errors.WithStack(
			errors.New("prometheus collector needs an address."),
		)
	}
	client, err := api.NewClient(api.Config{Address: opts.Address})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PromCollector{
		api:       promv1.NewAPI(client),
		namespace: opts.Namespace,
		workers:   workers,
		timeout:   timeout,
	}, nil
}

type queryJob struct {
	name  string
	query string
}

// CollectRange fetches every named metric over the window. The returned
// samples are ordered by metric name, then series, then time.
func (p *PromCollector) CollectRange(ctx context.Context, names []string, w Window) ([]Sample, error) {
	jobs := make(chan queryJob, len(names))
	for _, n := range names {
		m, ok := catalog.Lookup(n)
		if !ok {
			glog.Warningf("skipping unknown metric %q", n)
			continue
		}
		if m.Disabled() {
			continue
		}
		jobs <- queryJob{name: n, query: m.ExpandQuery(p.namespace)}
	}
	close(jobs)

	var (
		mtx     sync.Mutex
		samples []Sample
		wg      sync.WaitGroup
	)
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				got, err := p.queryRange(ctx, job, w)
				if err != nil {
					glog.Errorf("collect %s: %+v", job.name, err)
					continue
				}
				glog.V(1).Infof("collect %s: %d samples", job.name, len(got))
				mtx.Lock()
				samples = append(samples, got...)
				mtx.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	sortSamples(samples)
	return samples, nil
}

func (p *PromCollector) queryRange(ctx context.Context, job queryJob, w Window) ([]Sample, error) {
	qctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	value, warns, err := p.api.QueryRange(qctx, job.query, promv1.Range{
		Start: w.Start,
		End:   w.End,
		Step:  w.Step,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, warn := range warns {
		glog.Warningf("query %s: %s", job.name, warn)
	}

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, errors.WithStack(
			errors.Errorf("query %s returned %s, want matrix.", job.name, value.Type()),
		)
	}

	var samples []Sample
	for _, stream := range matrix {
		labels := make(Labels, len(stream.Metric))
		for k, v := range stream.Metric {
			labels[string(k)] = string(v)
		}
		for _, pair := range stream.Values {
			samples = append(samples, Sample{
				Metric:    job.name,
				Timestamp: pair.Timestamp.Time(),
				Value:     float64(pair.Value),
				Labels:    labels,
			})
		}
	}
	return samples, nil
}

func sortSamples(samples []Sample) {
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Metric != samples[j].Metric {
			return samples[i].Metric < samples[j].Metric
		}
		li := samples[i].Labels.ID(samples[i].Metric)
		lj := samples[j].Labels.ID(samples[j].Metric)
		if li != lj {
			return li < lj
		}
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}
