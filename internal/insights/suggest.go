package insights

import "math"

// suggestionBuffer is the flat headroom applied on top of historical
// averages when proposing category budgets.
const suggestionBuffer = 1.2

// SuggestBudgets derives a category-to-amount budget proposal from prior
// per-month summaries. Each category's average is taken over the months it
// actually had spending, not over the whole window, then padded by 20% and
// rounded. Categories with no spending in any month are absent from the
// result rather than suggested at zero.
func SuggestBudgets(history []MonthSummary) map[string]float64 {
	totals := make(map[string]float64)
	occurrences := make(map[string]int)

	for _, month := range history {
		for category, spent := range month.CategoryTotals {
			totals[category] += spent
			occurrences[category]++
		}
	}

	suggestions := make(map[string]float64, len(totals))
	for category, total := range totals {
		average := total / float64(occurrences[category])
		suggestions[category] = math.Round(average * suggestionBuffer)
	}

	return suggestions
}
