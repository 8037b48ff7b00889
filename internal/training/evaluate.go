package training

import (
	"math"
	"math/rand"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"
)

// Split shuffles row indices with seed and cuts off ceil(n*testSize) rows for
// testing. Both parts are non-empty whenever n >= 2.
func Split(n int, testSize float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 1 && n >= 2 && testSize > 0 {
		nTest = 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}

// Metrics scores a model on held-out rows
type Metrics struct {
	MAE float64
	R2  float64
}

// Evaluate returns mean absolute error and the coefficient of determination.
// R2 is 0 when the targets have no variance.
func Evaluate(model inference.Regressor, x [][]float64, y []float64) (Metrics, error) {
	if len(y) == 0 {
		return Metrics{}, nil
	}

	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var absErr, ssRes, ssTot float64
	for i, row := range x {
		pred, err := model.Predict(row)
		if err != nil {
			return Metrics{}, err
		}
		diff := y[i] - pred
		absErr += math.Abs(diff)
		ssRes += diff * diff
		ssTot += (y[i] - mean) * (y[i] - mean)
	}

	m := Metrics{MAE: absErr / float64(len(y))}
	if ssTot > 0 {
		m.R2 = 1 - ssRes/ssTot
	}
	return m, nil
}

func pick[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
