// Package forest implements the outlier-detection pipeline: a standard
// scaler feeding an isolation forest, with JSON persistence for serving.
package forest

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Scaler centers each feature and scales it to unit variance. Constant
// columns transform to zero instead of dividing by a zero deviation.
type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Fit learns per-column mean and standard deviation.
func (s *Scaler) Fit(x [][]float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return errors.WithStack(errors.New("scaler fit on empty matrix."))
	}
	cols := len(x[0])
	s.Means = make([]float64, cols)
	s.Stds = make([]float64, cols)

	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			if len(row) != cols {
				return errors.WithStack(fmt.Errorf(
					"ragged matrix: row %d has %d features, want %d.", i, len(row), cols,
				))
			}
			col[i] = row[j]
		}
		s.Means[j] = stat.Mean(col, nil)
		s.Stds[j] = stat.StdDev(col, nil)
	}
	return nil
}

// Transform returns a scaled copy of x.
func (s *Scaler) Transform(x [][]float64) ([][]float64, error) {
	if len(s.Means) == 0 {
		return nil, errors.WithStack(errors.New("scaler transform before fit."))
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.Means) {
			return nil, errors.WithStack(fmt.Errorf(
				"row %d has %d features, scaler has %d.", i, len(row), len(s.Means),
			))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			if s.Stds[j] == 0 {
				scaled[j] = 0
				continue
			}
			scaled[j] = (v - s.Means[j]) / s.Stds[j]
		}
		out[i] = scaled
	}
	return out, nil
}
