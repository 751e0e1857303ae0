package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithMetricsEnabled toggles queue metric recording.
func WithMetricsEnabled(enabled bool) Option {
	return func(q *InMemoryQueue) {
		q.metricsEnabled = enabled
	}
}
