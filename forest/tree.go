package forest

import (
	"math"
	"math/rand"
)

// node is one split of an isolation tree. Leaves carry the number of
// samples that fell through to them; inner nodes carry the split.
type node struct {
	Feature int     `json:"f,omitempty"`
	Split   float64 `json:"s,omitempty"`
	Left    *node   `json:"l,omitempty"`
	Right   *node   `json:"r,omitempty"`
	Size    int     `json:"n,omitempty"`
}

func (n *node) leaf() bool { return n.Left == nil && n.Right == nil }

// buildTree isolates the sample set by recursive random splits. features
// is the subset of feature indices this tree may split on.
func buildTree(x [][]float64, rows []int, features []int, depth, maxDepth int, rng *rand.Rand) *node {
	if len(rows) <= 1 || depth >= maxDepth {
		return &node{Size: len(rows)}
	}

	// Pick a feature that still varies within this partition. Give up
	// after a few draws, the partition may be constant.
	var (
		feature  = -1
		min, max float64
	)
	for try := 0; try < len(features); try++ {
		f := features[rng.Intn(len(features))]
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, i := range rows {
			v := x[i][f]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi > lo {
			feature, min, max = f, lo, hi
			break
		}
	}
	if feature < 0 {
		return &node{Size: len(rows)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right []int
	for _, i := range rows {
		if x[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{Size: len(rows)}
	}

	return &node{
		Feature: feature,
		Split:   split,
		Left:    buildTree(x, left, features, depth+1, maxDepth, rng),
		Right:   buildTree(x, right, features, depth+1, maxDepth, rng),
	}
}

// pathLength walks one sample down the tree. A leaf holding more than one
// sample gets the average-path correction added, as if isolation had
// continued.
func (n *node) pathLength(sample []float64, depth float64) float64 {
	if n.leaf() {
		return depth + avgPathLength(float64(n.Size))
	}
	if sample[n.Feature] < n.Split {
		return n.Left.pathLength(sample, depth+1)
	}
	return n.Right.pathLength(sample, depth+1)
}

const eulerMascheroni = 0.5772156649

// avgPathLength is c(n), the expected path length of an unsuccessful
// search in a binary search tree of n nodes.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+eulerMascheroni) - 2*(n-1)/n
}
