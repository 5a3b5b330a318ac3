package insights

import (
	"time"

	"github.com/centsible/backend/internal/model"
)

// MonthSummary is the aggregation of a user's expenses over one calendar
// month: the filtered records, their total, and per-category sums.
type MonthSummary struct {
	Year           int                `json:"year"`
	Month          time.Month         `json:"month"`
	Expenses       []*model.Expense   `json:"expenses"`
	TotalSpent     float64            `json:"totalSpent"`
	CategoryTotals map[string]float64 `json:"categoryTotals"`
}

// AggregateMonth filters expenses down to the given calendar month and sums
// them in total and per category. Expenses without a category are attributed
// to model.FallbackCategory. An empty input yields a zero total and an empty
// category map.
func AggregateMonth(expenses []*model.Expense, year int, month time.Month) MonthSummary {
	summary := MonthSummary{
		Year:           year,
		Month:          month,
		Expenses:       make([]*model.Expense, 0, len(expenses)),
		CategoryTotals: make(map[string]float64),
	}

	for _, e := range expenses {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}

		category := e.Category
		if category == "" {
			category = model.FallbackCategory
		}

		summary.Expenses = append(summary.Expenses, e)
		summary.TotalSpent += e.Amount
		summary.CategoryTotals[category] += e.Amount
	}

	return summary
}

// AggregateHistory produces independent per-month summaries for the n
// calendar months immediately preceding (year, month), ordered oldest first.
func AggregateHistory(expenses []*model.Expense, year int, month time.Month, n int) []MonthSummary {
	history := make([]MonthSummary, 0, n)
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	for i := n; i >= 1; i-- {
		m := anchor.AddDate(0, -i, 0)
		history = append(history, AggregateMonth(expenses, m.Year(), m.Month()))
	}

	return history
}
