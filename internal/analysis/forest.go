package analysis

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// Random forest regressor: bootstrap-sampled CART trees averaging
// their predictions. Defaults follow common practice for small
// tabular data.
const (
	forestTrees   = 100
	forestMaxDepth = 10
	forestMinLeaf  = 5
)

type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) isLeaf() bool { return n.left == nil }

func (n *treeNode) predict(row []float64) float64 {
	for !n.isLeaf() {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// fitForest trains a bagged ensemble of regression trees on the
// training partition and predicts the held-out rows. The tree builder
// considers a random sqrt-sized feature subset at each split.
func fitForest(trainX [][]float64, trainY []float64, testX [][]float64, seed uint64) ([]float64, error) {
	rng := rand.New(rand.NewSource(seed))
	n := len(trainX)
	nFeatures := len(trainX[0])
	mtry := int(math.Ceil(math.Sqrt(float64(nFeatures))))

	trees := make([]*treeNode, forestTrees)
	for t := range trees {
		// Bootstrap sample with replacement
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		trees[t] = buildTree(trainX, trainY, sample, mtry, 0, rng)
	}

	predicted := make([]float64, len(testX))
	for i, row := range testX {
		var sum float64
		for _, tree := range trees {
			sum += tree.predict(row)
		}
		predicted[i] = sum / float64(len(trees))
	}
	return predicted, nil
}

func buildTree(x [][]float64, y []float64, indices []int, mtry, depth int, rng *rand.Rand) *treeNode {
	if depth >= forestMaxDepth || len(indices) < 2*forestMinLeaf {
		return &treeNode{value: meanAt(y, indices)}
	}

	feature, threshold, ok := bestSplit(x, y, indices, mtry, rng)
	if !ok {
		return &treeNode{value: meanAt(y, indices)}
	}

	var left, right []int
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < forestMinLeaf || len(right) < forestMinLeaf {
		return &treeNode{value: meanAt(y, indices)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(x, y, left, mtry, depth+1, rng),
		right:     buildTree(x, y, right, mtry, depth+1, rng),
	}
}

// bestSplit finds the variance-minimizing split over a random feature
// subset. Returns ok=false when no split separates the points.
func bestSplit(x [][]float64, y []float64, indices []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(x[0])
	candidates := rng.Perm(nFeatures)[:mtry]

	bestScore := math.Inf(1)
	bestFeature := -1
	var bestThreshold float64

	values := make([]float64, 0, len(indices))
	for _, feature := range candidates {
		values = values[:0]
		for _, i := range indices {
			values = append(values, x[i][feature])
		}
		sort.Float64s(values)

		for vi := 0; vi < len(values)-1; vi++ {
			if values[vi] == values[vi+1] {
				continue
			}
			threshold := (values[vi] + values[vi+1]) / 2
			score := splitScore(x, y, indices, feature, threshold)
			if score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// splitScore is the weighted sum of squared deviations of the two
// children
func splitScore(x [][]float64, y []float64, indices []int, feature int, threshold float64) float64 {
	var ln, rn, lSum, rSum, lSq, rSq float64
	for _, i := range indices {
		if x[i][feature] <= threshold {
			ln++
			lSum += y[i]
			lSq += y[i] * y[i]
		} else {
			rn++
			rSum += y[i]
			rSq += y[i] * y[i]
		}
	}
	if ln == 0 || rn == 0 {
		return math.Inf(1)
	}
	// sum of squares minus n*mean^2 per child
	return (lSq - lSum*lSum/ln) + (rSq - rSum*rSum/rn)
}

func meanAt(y []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}
