package repository

import "math"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithAscending orders the leaderboard by increasing score, for policies
// where a lower score is better.
func WithAscending(ascending bool) Option {
	return func(s *TreapStore) {
		s.ascending = ascending
	}
}

// WithPrecision sets how many decimal places of a score take part in
// ordering and tie detection.
func WithPrecision(places int) Option {
	return func(s *TreapStore) {
		if places >= 0 && places <= maxPrecision {
			s.scale = math.Pow10(places)
		}
	}
}
