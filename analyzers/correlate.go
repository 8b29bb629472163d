package analyzer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelatedPair is a pair of feature columns with their Pearson
// correlation, reported for the training summary. Metrics that move in
// lockstep point at a shared root cause.
type CorrelatedPair struct {
	A, B string
	R    float64
}

// TopCorrelations computes the correlation matrix of the named columns
// and returns the n strongest off-diagonal pairs by |r|.
func TopCorrelations(frame *Frame, names []string, n int) ([]CorrelatedPair, error) {
	x, err := frame.Matrix(names)
	if err != nil {
		return nil, err
	}
	dst := mat.NewSymDense(len(names), nil)
	stat.CorrelationMatrix(dst, x, nil)

	var pairs []CorrelatedPair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			r := dst.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, CorrelatedPair{A: names[i], B: names[j], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs, nil
}
