// Package analyzer turns raw samples into the feature table the detection
// models consume, and evaluates catalog thresholds over it.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"selfheal.io/anomaly/collector"
)

// AggFunc collapses the values one metric produced inside one time bucket
// (multiple series, or multiple samples of one series).
type AggFunc func(values []float64) float64

// AggregationFunc names the available bucket aggregators. Mean is the
// pivot default; max/min exist for metrics where the worst series matters
// more than the average one.
var AggregationFunc = map[string]AggFunc{
	"mean": aggMean,
	"max":  aggMax,
	"min":  aggMin,
}

func aggMean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func aggMax(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func aggMin(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Frame is a timestamp-indexed feature table, column major. Missing cells
// are NaN.
type Frame struct {
	Times   []time.Time
	columns []string
	data    map[string][]float64
}

func NewFrame(times []time.Time) *Frame {
	return &Frame{Times: times, data: map[string][]float64{}}
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	return f.columns
}

// Column returns the values of one column, nil if absent. The slice is
// the frame's own storage, callers must not grow it.
func (f *Frame) Column(name string) []float64 {
	return f.data[name]
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.data[name]
	return ok
}

// AddColumn attaches a column. The length must match the time index.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.Times) {
		return errors.WithStack(fmt.Errorf(
			"column %q has %d values, frame has %d rows.", name, len(values), len(f.Times),
		))
	}
	if _, ok := f.data[name]; ok {
		return errors.WithStack(fmt.Errorf("duplicated column %q.", name))
	}
	f.columns = append(f.columns, name)
	f.data[name] = values
	return nil
}

// Rows is the number of rows.
func (f *Frame) Rows() int { return len(f.Times) }

// Matrix copies the named columns into a dense row-sample matrix.
// Unknown names are an error.
func (f *Frame) Matrix(names []string) (*mat.Dense, error) {
	if len(names) == 0 || f.Rows() == 0 {
		return nil, errors.WithStack(errors.New("empty frame selection."))
	}
	m := mat.NewDense(f.Rows(), len(names), nil)
	for j, name := range names {
		col, ok := f.data[name]
		if !ok {
			return nil, errors.WithStack(fmt.Errorf("unknown column %q.", name))
		}
		m.SetCol(j, col)
	}
	return m, nil
}

// RowSlices copies the named columns into per-row slices, the shape the
// forest trains on.
func (f *Frame) RowSlices(names []string) ([][]float64, error) {
	m, err := f.Matrix(names)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		mat.Row(row, i, m)
		out[i] = row
	}
	return out, nil
}

// DropNaN removes every row containing a NaN in any column and returns
// the cleaned frame. Rolling features leave a warm-up prefix of NaNs, so
// this runs last in the engineering chain.
func (f *Frame) DropNaN() *Frame {
	keep := make([]bool, f.Rows())
	kept := 0
	for i := range f.Times {
		keep[i] = true
		for _, name := range f.columns {
			if math.IsNaN(f.data[name][i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			kept++
		}
	}

	clean := NewFrame(make([]time.Time, 0, kept))
	for i, ok := range keep {
		if ok {
			clean.Times = append(clean.Times, f.Times[i])
		}
	}
	for _, name := range f.columns {
		src := f.data[name]
		dst := make([]float64, 0, kept)
		for i, ok := range keep {
			if ok {
				dst = append(dst, src[i])
			}
		}
		clean.AddColumn(name, dst)
	}
	return clean
}

// Pivot buckets samples to the step grid and collapses each metric's
// values per bucket with the aggregator, yielding one column per metric.
func Pivot(samples []collector.Sample, step time.Duration, agg AggFunc) (*Frame, error) {
	if len(samples) == 0 {
		return nil, errors.WithStack(errors.New("pivot of zero samples."))
	}
	if agg == nil {
		agg = aggMean
	}

	type cell struct {
		metric string
		bucket int64
	}
	cells := map[cell][]float64{}
	buckets := map[int64]struct{}{}
	metricSet := map[string]struct{}{}
	for _, s := range samples {
		b := s.Timestamp.Truncate(step).Unix()
		cells[cell{s.Metric, b}] = append(cells[cell{s.Metric, b}], s.Value)
		buckets[b] = struct{}{}
		metricSet[s.Metric] = struct{}{}
	}

	ordered := make([]int64, 0, len(buckets))
	for b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	metrics := make([]string, 0, len(metricSet))
	for m := range metricSet {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	times := make([]time.Time, len(ordered))
	index := map[int64]int{}
	for i, b := range ordered {
		times[i] = time.Unix(b, 0).UTC()
		index[b] = i
	}

	frame := NewFrame(times)
	for _, m := range metrics {
		col := make([]float64, len(times))
		for i := range col {
			col[i] = math.NaN()
		}
		for b, i := range index {
			if vals, ok := cells[cell{m, b}]; ok {
				col[i] = agg(vals)
			}
		}
		frame.AddColumn(m, col)
	}
	return frame, nil
}
