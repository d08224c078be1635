package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// Linear epsilon-insensitive support vector regression trained by
// subgradient descent. Features are already bounded (one-hot and
// scaled calendar columns), so no further scaling is applied; the
// target is centered and scaled internally for stable steps.
const (
	svrEpochs       = 200
	svrLearningRate = 0.01
	svrLambda       = 1e-4
	svrEpsilon      = 0.1
)

// fitLinearSVR trains the model on the training partition and predicts
// the held-out rows.
func fitLinearSVR(trainX [][]float64, trainY []float64, testX [][]float64) ([]float64, error) {
	mean, sd := stat.MeanStdDev(trainY, nil)
	if sd == 0 {
		sd = 1
	}
	scaledY := make([]float64, len(trainY))
	for i, y := range trainY {
		scaledY[i] = (y - mean) / sd
	}

	nFeatures := len(trainX[0])
	w := make([]float64, nFeatures)

	for epoch := 0; epoch < svrEpochs; epoch++ {
		step := svrLearningRate / (1 + svrLearningRate*svrLambda*float64(epoch))
		for i, row := range trainX {
			pred := dot(w, row)
			diff := pred - scaledY[i]

			// Subgradient of the epsilon-insensitive loss
			var sign float64
			if diff > svrEpsilon {
				sign = 1
			} else if diff < -svrEpsilon {
				sign = -1
			}
			for j, f := range row {
				grad := svrLambda * w[j]
				if sign != 0 {
					grad += sign * f
				}
				w[j] -= step * grad
			}
		}
	}

	predicted := make([]float64, len(testX))
	for i, row := range testX {
		predicted[i] = dot(w, row)*sd + mean
	}
	return predicted, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}
