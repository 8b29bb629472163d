// Package collector fetches the catalog's time series, either from a
// Prometheus backend or from the local node as a fallback.
package collector

import (
	"context"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Labels represents a collection of label name -> value mappings attached
// to a collected series, e.g. the namespace and pod a sample came from.
type Labels map[string]string

// ID hashes the sorted label pairs together with the metric name. It is
// used as the series identity when samples are grouped, so two samples of
// the same metric and label set always land in the same series.
func (l Labels) ID(metric string) uint64 {
	names := make([]string, 0, len(l))
	for n := range l {
		names = append(names, n)
	}
	sort.Strings(names)

	h := xxhash.New()
	h.WriteString(metric)
	for _, n := range names {
		h.Write([]byte{0xff})
		h.WriteString(n)
		h.Write([]byte{0xff})
		h.WriteString(l[n])
	}
	return h.Sum64()
}

// Sample is one observation of one metric.
type Sample struct {
	Metric    string
	Timestamp time.Time
	Value     float64
	Labels    Labels
}

// Series is an ordered run of samples sharing metric and labels.
type Series struct {
	Metric  string
	Labels  Labels
	Samples []Sample
}

// Window bounds a range collection.
type Window struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// LookbackWindow is the window ending now with the given span.
func LookbackWindow(span, step time.Duration) Window {
	end := time.Now()
	return Window{Start: end.Add(-span), End: end, Step: step}
}

// Collector fetches samples for a set of catalog metric names. A failing
// metric must not abort the rest; implementations log and move on.
type Collector interface {
	CollectRange(ctx context.Context, names []string, w Window) ([]Sample, error)
}
