package analyzer

import (
	"math"
	"time"

	"selfheal.io/anomaly/catalog"
)

// Level of a threshold breach.
type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelCritical
)

var levelNames = map[Level]string{
	LevelNone:     "none",
	LevelWarning:  "warning",
	LevelCritical: "critical",
}

func (l Level) String() string { return levelNames[l] }

// Alert is one metric sitting past its catalog threshold at a point in
// time. It rides along with the anomaly scores to the results sink so the
// model output always has the plain-threshold view next to it.
type Alert struct {
	Metric    string
	Level     Level
	Value     float64
	Threshold float64
	Timestamp time.Time
}

// EvaluateThresholds checks the newest row of a pivoted frame against the
// catalog. Columns without a catalog entry or threshold are skipped, as
// are NaN cells.
func EvaluateThresholds(frame *Frame) []Alert {
	if frame.Rows() == 0 {
		return nil
	}
	last := frame.Rows() - 1
	ts := frame.Times[last]

	var alerts []Alert
	for _, name := range frame.Columns() {
		m, ok := catalog.Lookup(name)
		if !ok || !m.Thresholds.Has() {
			continue
		}
		v := frame.Column(name)[last]
		if math.IsNaN(v) {
			continue
		}
		level := Level(severity(m, v))
		if level == LevelNone {
			continue
		}
		threshold := m.Thresholds.Warning
		if level == LevelCritical {
			threshold = m.Thresholds.Critical
		}
		alerts = append(alerts, Alert{
			Metric:    name,
			Level:     level,
			Value:     v,
			Threshold: threshold,
			Timestamp: ts,
		})
	}
	return alerts
}
