package analyzer

import (
	"math"

	"github.com/bmizerany/perks/quantile"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"

	"selfheal.io/anomaly/catalog"
)

// RollingWindow is the span of the rolling statistics in steps. Twelve
// five-minute buckets cover one hour.
const RollingWindow = 12

// Suffixes of the engineered columns.
const (
	SuffixNormalized = "_normalized"
	SuffixRate       = "_rate"
	SuffixRollMean   = "_rolling_mean"
	SuffixRollStd    = "_rolling_std"
	SuffixRunningP50 = "_running_p50"
	SuffixRunningP95 = "_running_p95"
	SuffixSeverity   = "_severity"
)

// Engineer derives the model features from a pivoted frame:
//
//   - <metric>_normalized: value over its critical threshold, or the
//     standard score when the catalog has no threshold for it
//   - <metric>_rate: first difference of the normalized column
//   - <metric>_normalized_rolling_mean/_rolling_std over RollingWindow
//   - <metric>_normalized_running_p50/_running_p95, stream quantiles
//     over everything seen so far
//   - hour, day_of_week, is_business_hours, is_weekend
//   - <metric>_severity: 0/1/2 against the warning/critical thresholds
//
// The trailing DropNaN removes the rolling warm-up rows.
func Engineer(frame *Frame) (*Frame, error) {
	out := NewFrame(frame.Times)
	base := frame.Columns()

	for _, name := range base {
		raw := frame.Column(name)
		if err := out.AddColumn(name, raw); err != nil {
			return nil, err
		}

		norm := normalize(name, raw)
		if err := out.AddColumn(name+SuffixNormalized, norm); err != nil {
			return nil, err
		}
		if err := out.AddColumn(name+SuffixRate, diff(norm)); err != nil {
			return nil, err
		}

		rollMean, rollStd := rolling(norm, RollingWindow)
		if err := out.AddColumn(name+SuffixNormalized+SuffixRollMean, rollMean); err != nil {
			return nil, err
		}
		if err := out.AddColumn(name+SuffixNormalized+SuffixRollStd, rollStd); err != nil {
			return nil, err
		}

		p50, p95 := runningQuantiles(norm)
		if err := out.AddColumn(name+SuffixNormalized+SuffixRunningP50, p50); err != nil {
			return nil, err
		}
		if err := out.AddColumn(name+SuffixNormalized+SuffixRunningP95, p95); err != nil {
			return nil, err
		}
	}

	if err := addTimeColumns(out); err != nil {
		return nil, err
	}
	if err := addSeverityColumns(out, base, frame); err != nil {
		return nil, err
	}

	clean := out.DropNaN()
	glog.V(1).Infof("engineered %d columns, %d rows kept of %d",
		len(clean.Columns()), clean.Rows(), frame.Rows())
	return clean, nil
}

// normalize scales by the critical threshold when the catalog has one,
// otherwise falls back to the standard score of the column.
func normalize(name string, raw []float64) []float64 {
	out := make([]float64, len(raw))
	if m, ok := catalog.Lookup(name); ok && m.Thresholds.Has() && m.Thresholds.Critical != 0 {
		for i, v := range raw {
			out[i] = v / m.Thresholds.Critical
		}
		return out
	}

	finite := make([]float64, 0, len(raw))
	for _, v := range raw {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	mean := stat.Mean(finite, nil)
	std := stat.StdDev(finite, nil)
	for i, v := range raw {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case std == 0 || math.IsNaN(std):
			out[i] = 0
		default:
			out[i] = (v - mean) / std
		}
	}
	return out
}

// diff is the first difference with a leading zero, matching how the
// original pipeline filled the first rate.
func diff(col []float64) []float64 {
	out := make([]float64, len(col))
	for i := 1; i < len(col); i++ {
		out[i] = col[i] - col[i-1]
	}
	return out
}

func rolling(col []float64, window int) (mean, std []float64) {
	mean = make([]float64, len(col))
	std = make([]float64, len(col))
	for i := range col {
		if i < window-1 {
			mean[i] = math.NaN()
			std[i] = math.NaN()
			continue
		}
		win := col[i-window+1 : i+1]
		mean[i] = stat.Mean(win, nil)
		std[i] = stat.StdDev(win, nil)
	}
	return mean, std
}

// runningQuantiles streams the column through a targeted quantile sketch.
// Unlike the rolling pair this never evicts: each row sees the quantiles
// of everything before it.
func runningQuantiles(col []float64) (p50, p95 []float64) {
	stream := quantile.NewTargeted(0.50, 0.95)
	p50 = make([]float64, len(col))
	p95 = make([]float64, len(col))
	for i, v := range col {
		if !math.IsNaN(v) {
			stream.Insert(v)
		}
		if stream.Count() == 0 {
			p50[i] = math.NaN()
			p95[i] = math.NaN()
			continue
		}
		p50[i] = stream.Query(0.50)
		p95[i] = stream.Query(0.95)
	}
	return p50, p95
}

func addTimeColumns(out *Frame) error {
	n := out.Rows()
	hour := make([]float64, n)
	dow := make([]float64, n)
	business := make([]float64, n)
	weekend := make([]float64, n)
	for i, ts := range out.Times {
		h := ts.Hour()
		d := int(ts.Weekday())
		hour[i] = float64(h)
		dow[i] = float64(d)
		if h >= 9 && h <= 17 {
			business[i] = 1
		}
		if d == 0 || d == 6 {
			weekend[i] = 1
		}
	}
	cols := []struct {
		name   string
		values []float64
	}{
		{"hour", hour},
		{"day_of_week", dow},
		{"is_business_hours", business},
		{"is_weekend", weekend},
	}
	for _, c := range cols {
		if err := out.AddColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}

func addSeverityColumns(out *Frame, base []string, frame *Frame) error {
	for _, name := range base {
		m, ok := catalog.Lookup(name)
		if !ok || !m.Thresholds.Has() {
			continue
		}
		raw := frame.Column(name)
		sev := make([]float64, len(raw))
		for i, v := range raw {
			if math.IsNaN(v) {
				sev[i] = math.NaN()
				continue
			}
			sev[i] = float64(severity(m, v))
		}
		if err := out.AddColumn(name+SuffixSeverity, sev); err != nil {
			return err
		}
	}
	return nil
}

func severity(m *catalog.Metric, v float64) int {
	warn, crit := m.Thresholds.Warning, m.Thresholds.Critical
	if m.Direction == catalog.DirectionLower {
		switch {
		case v <= crit:
			return 2
		case v <= warn:
			return 1
		}
		return 0
	}
	switch {
	case v >= crit:
		return 2
	case v >= warn:
		return 1
	}
	return 0
}
