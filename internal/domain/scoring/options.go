package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the compatibility weight vector.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithSubjectStrategy selects the subject matching variant.
func WithSubjectStrategy(strategy SubjectStrategy) Option {
	return func(s *Scorer) {
		if strategy != "" {
			s.strategy = strategy
		}
	}
}

// WithMaxExperienceDiff sets the normalization bound for the experience gap.
func WithMaxExperienceDiff(diff float64) Option {
	return func(s *Scorer) {
		if diff > 0 {
			s.maxExperienceDiff = diff
		}
	}
}

// WithMaxWorkload sets the workload at which the penalty term reaches 0.
func WithMaxWorkload(max int) Option {
	return func(s *Scorer) {
		if max > 0 {
			s.maxWorkload = max
		}
	}
}
