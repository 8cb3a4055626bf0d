package repository

// Option applies a configuration option to the ResultStore.
type Option func(*ResultStore)

// WithMaxSize sets how many responses the store retains before FIFO
// eviction starts.
func WithMaxSize(maxSize int) Option {
	return func(s *ResultStore) {
		if maxSize > 0 {
			s.maxSize = maxSize
		}
	}
}
