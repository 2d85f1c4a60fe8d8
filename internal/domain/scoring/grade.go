package scoring

import "github.com/okian/rcajudge/internal/domain/model"

// DefaultGradient awards 100 points for a correct first guess and 20 for a
// correct second guess.
var DefaultGradient = Gradient{100, 20}

// RankOf returns the 0-based position of the first correct guess. ok is
// false when no guess is correct.
func RankOf(guesses []model.Identifier, answer model.Answer) (rank int, ok bool) {
	for i, g := range guesses {
		if answer.IsCorrect(g) {
			return i, true
		}
	}
	return 0, false
}

// Gradient maps a rank position to points.
type Gradient []float64

// Points returns the points for rank; ranks beyond the table and missing
// ranks are worth zero.
func (g Gradient) Points(rank int, ok bool) float64 {
	if !ok || rank < 0 || rank >= len(g) {
		return 0
	}
	return g[rank]
}

// Grade scores a ranked guess list against an answer.
func (g Gradient) Grade(guesses []model.Identifier, answer model.Answer) float64 {
	return g.Points(RankOf(guesses, answer))
}
