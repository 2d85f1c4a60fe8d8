package scoring

// Selector reduces the costs of all matches of one fault to a single cost.
type Selector string

// Supported selectors.
const (
	// SelectLast keeps the cost of the team's last answer.
	SelectLast Selector = "last"
	// SelectBest keeps the lowest cost among the team's answers.
	SelectBest Selector = "best"
)

// Select applies sel to costs. An empty list yields miss.
func Select(sel Selector, costs []float64, miss float64) float64 {
	if len(costs) == 0 {
		return miss
	}
	if sel == SelectBest {
		best := costs[0]
		for _, c := range costs[1:] {
			if c < best {
				best = c
			}
		}
		return best
	}
	return costs[len(costs)-1]
}
