package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BlockAverage splits values into equal consecutive blocks, dropping the
// trailing remainder, and returns the mean of the block means with its
// standard error.
func BlockAverage(values []float64, blocks int) (mean, stdErr float64, err error) {
	if blocks < 2 || len(values) < blocks {
		return 0, 0, fmt.Errorf("%w: %d values in %d blocks", ErrRange, len(values), blocks)
	}
	size := len(values) / blocks
	means := make([]float64, blocks)
	for b := range means {
		means[b] = stat.Mean(values[b*size:(b+1)*size], nil)
	}
	mean = stat.Mean(means, nil)
	stdErr = stat.StdDev(means, nil) / math.Sqrt(float64(blocks))
	return mean, stdErr, nil
}
