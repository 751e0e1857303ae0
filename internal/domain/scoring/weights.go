// Package scoring computes compatibility scores for mentee/mentor pairs.
package scoring

import (
	"fmt"
	"math"
)

// weightSumEpsilon bounds the allowed drift of the weight sum from 1.
const weightSumEpsilon = 1e-9

// Weights is the versioned weight vector combining the sub-scores into one
// compatibility score. The five weights must sum to 1; Validate runs once at
// construction time, not per scoring call.
type Weights struct {
	Subject      float64
	Experience   float64
	Availability float64
	Location     float64
	Workload     float64
}

// DefaultWeights returns the standard weight vector.
func DefaultWeights() Weights {
	return Weights{
		Subject:      0.5,
		Experience:   0.1,
		Availability: 0.2,
		Location:     0.1,
		Workload:     0.1,
	}
}

// Validate checks that all weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	sum := 0.0
	for _, v := range []float64{w.Subject, w.Experience, w.Availability, w.Location, w.Workload} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: weights must be non-negative", ErrInvalidWeights)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightSumEpsilon {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidWeights, sum)
	}
	return nil
}
