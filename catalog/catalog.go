// Package catalog holds the static monitoring-signal catalog used by the
// anomaly-detection pipeline: which metrics to watch, the PromQL to fetch
// them, their warning/critical thresholds and the model preset that applies
// to each anomaly category.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Category is the subsystem a metric observes.
type Category int

const (
	CategoryCPU Category = iota
	CategoryMemory
	CategoryDisk
	CategoryNetwork
	CategoryStability
	CategoryControlPlane
)

var categoryNames = map[Category]string{
	CategoryCPU:          "cpu",
	CategoryMemory:       "memory",
	CategoryDisk:         "disk",
	CategoryNetwork:      "network",
	CategoryStability:    "stability",
	CategoryControlPlane: "control_plane",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// AnomalyCategory groups metrics that are modelled together. A detection
// model is trained per AnomalyCategory, each with its own preset.
type AnomalyCategory int

const (
	AnomalyResource AnomalyCategory = iota
	AnomalyStability
	AnomalyPerformance
	AnomalyNetwork
	AnomalyControlPlane
)

var anomalyCategoryNames = map[AnomalyCategory]string{
	AnomalyResource:     "resource",
	AnomalyStability:    "stability",
	AnomalyPerformance:  "performance",
	AnomalyNetwork:      "network",
	AnomalyControlPlane: "control-plane",
}

func (a AnomalyCategory) String() string {
	if n, ok := anomalyCategoryNames[a]; ok {
		return n
	}
	return fmt.Sprintf("anomaly(%d)", int(a))
}

// AnomalyCategories lists every model grouping in a stable order.
var AnomalyCategories = []AnomalyCategory{
	AnomalyResource,
	AnomalyStability,
	AnomalyPerformance,
	AnomalyNetwork,
	AnomalyControlPlane,
}

// NSSlot is the namespace placeholder inside a Query. ExpandQuery replaces
// it with a concrete matcher, or removes it for cluster-wide collection.
const NSSlot = "__NS__"

// Thresholds carries the alerting bounds of a metric. Zero-value fields
// mean "no threshold"; Has reports which side is set.
type Thresholds struct {
	Warning  float64
	Critical float64
	set      bool
}

// NewThresholds builds a set threshold pair.
func NewThresholds(warning, critical float64) Thresholds {
	return Thresholds{Warning: warning, Critical: critical, set: true}
}

func (t Thresholds) Has() bool { return t.set }

// Metric describes one monitoring signal: how to query it, which subsystem
// and model grouping it belongs to, and when it should alert.
//
// Direction tells the alert analyzer which side of the threshold is bad.
// Almost everything in this catalog alerts when the value grows, so
// DirectionUpper is the default.
type Metric struct {
	Name        string
	Query       string
	Category    Category
	Anomaly     AnomalyCategory
	Unit        string
	Help        string
	Thresholds  Thresholds
	Direction   Direction
	disabledVia string
}

// Direction of a threshold breach.
type Direction int

const (
	DirectionUpper Direction = iota
	DirectionLower
)

// Disabled reports whether an override switched the metric off.
func (m *Metric) Disabled() bool { return m.disabledVia != "" }

// ExpandQuery fills the metric's namespace slot. With an empty namespace
// the slot is dropped, which leaves a cluster-wide selector.
func (m *Metric) ExpandQuery(namespace string) string {
	if !strings.Contains(m.Query, NSSlot) {
		return m.Query
	}
	if namespace == "" {
		return strings.ReplaceAll(m.Query, NSSlot, "")
	}
	return strings.ReplaceAll(m.Query, NSSlot, fmt.Sprintf("namespace=%q,", namespace))
}

var allMetrics map[string]*Metric

func init() {
	allMetrics = map[string]*Metric{}
	for _, group := range [][]*Metric{NodeMetrics, PodMetrics, KubernetesMetrics, ControlPlaneMetrics} {
		for _, m := range group {
			if _, ok := allMetrics[m.Name]; ok {
				panic(fmt.Sprintf("duplicated metric name %q in catalog.", m.Name))
			}
			allMetrics[m.Name] = m
		}
	}
	buildCollections()
}

// All returns every metric in the catalog keyed by name.
func All() map[string]*Metric {
	return allMetrics
}

// Lookup finds one metric by name.
func Lookup(name string) (*Metric, bool) {
	m, ok := allMetrics[name]
	return m, ok
}

// Queries returns name -> PromQL for the requested metrics, skipping
// unknown and disabled names.
func Queries(names []string) map[string]string {
	result := make(map[string]string, len(names))
	for _, n := range names {
		m, ok := allMetrics[n]
		if !ok || m.Disabled() {
			continue
		}
		result[n] = m.Query
	}
	return result
}

// GetThresholds returns name -> thresholds for the requested metrics.
// Metrics without thresholds are omitted.
func GetThresholds(names []string) map[string]Thresholds {
	result := make(map[string]Thresholds, len(names))
	for _, n := range names {
		m, ok := allMetrics[n]
		if !ok || !m.Thresholds.Has() {
			continue
		}
		result[n] = m.Thresholds
	}
	return result
}

// ByCategory returns the metrics of one subsystem, name-sorted.
func ByCategory(c Category) []*Metric {
	return selectMetrics(func(m *Metric) bool { return m.Category == c })
}

// ByAnomalyCategory returns the metrics of one model grouping, name-sorted.
func ByAnomalyCategory(a AnomalyCategory) []*Metric {
	return selectMetrics(func(m *Metric) bool { return m.Anomaly == a })
}

func selectMetrics(keep func(*Metric) bool) []*Metric {
	result := []*Metric{}
	for _, m := range allMetrics {
		if m.Disabled() || !keep(m) {
			continue
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Names extracts the names of a metric slice, keeping order.
func Names(metrics []*Metric) []string {
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.Name)
	}
	return names
}

// Fingerprint hashes the catalog's names and queries. Persisted with every
// trained model so a catalog edit invalidates stale artifacts.
func Fingerprint() uint64 {
	names := make([]string, 0, len(allMetrics))
	for n := range allMetrics {
		names = append(names, n)
	}
	sort.Strings(names)

	h := xxhash.New()
	for _, n := range names {
		m := allMetrics[n]
		if m.Disabled() {
			continue
		}
		h.WriteString(n)
		h.Write([]byte{0})
		h.WriteString(m.Query)
		h.Write([]byte{0})
	}
	return h.Sum64()
}
