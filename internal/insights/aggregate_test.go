package insights

import (
	"testing"
	"time"

	"github.com/centsible/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(amount float64, category string, date time.Time) *model.Expense {
	return &model.Expense{
		ID:       "e-" + date.Format("20060102") + "-" + category,
		UserID:   "user123",
		Amount:   amount,
		Category: category,
		Date:     date,
	}
}

func TestAggregateMonth(t *testing.T) {
	june := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	// One uncategorized expense, plus two outside the month entirely
	expenses := []*model.Expense{
		expense(100, "Food", june),
		expense(50, "Food", june.AddDate(0, 0, 3)),
		expense(200, "Rent", june),
		expense(75, "", june),
		expense(999, "Food", june.AddDate(0, 1, 0)),
		expense(999, "Food", june.AddDate(-1, 0, 0)),
	}

	summary := AggregateMonth(expenses, 2025, time.June)

	assert.Equal(t, 2025, summary.Year)
	assert.Equal(t, time.June, summary.Month)
	assert.Len(t, summary.Expenses, 4)
	assert.InDelta(t, 425, summary.TotalSpent, 1e-9)
	assert.InDelta(t, 150, summary.CategoryTotals["Food"], 1e-9)
	assert.InDelta(t, 200, summary.CategoryTotals["Rent"], 1e-9)
	assert.InDelta(t, 75, summary.CategoryTotals[model.FallbackCategory], 1e-9)
}

func TestAggregateMonthTotalEqualsCategorySum(t *testing.T) {
	june := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	expenses := []*model.Expense{
		expense(12.34, "Food", june),
		expense(56.78, "Transport", june.AddDate(0, 0, 10)),
		expense(9.99, "", june.AddDate(0, 0, 20)),
	}

	summary := AggregateMonth(expenses, 2025, time.June)

	var categorySum float64
	for _, v := range summary.CategoryTotals {
		categorySum += v
	}
	assert.InDelta(t, summary.TotalSpent, categorySum, 1e-9)
}

func TestAggregateMonthEmpty(t *testing.T) {
	summary := AggregateMonth(nil, 2025, time.June)

	assert.Zero(t, summary.TotalSpent)
	assert.Empty(t, summary.Expenses)
	assert.Empty(t, summary.CategoryTotals)
}

func TestAggregateMonthBoundaries(t *testing.T) {
	first := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)

	summary := AggregateMonth([]*model.Expense{
		expense(10, "Food", first),
		expense(20, "Food", last),
	}, 2025, time.June)

	assert.InDelta(t, 30, summary.TotalSpent, 1e-9)
}

func TestAggregateHistory(t *testing.T) {
	mk := func(year int, month time.Month, amount float64) *model.Expense {
		return expense(amount, "Food", time.Date(year, month, 10, 0, 0, 0, 0, time.UTC))
	}

	expenses := []*model.Expense{
		mk(2025, time.March, 100),
		mk(2025, time.April, 200),
		mk(2025, time.May, 300),
		mk(2025, time.June, 999), // anchor month itself, excluded
	}

	history := AggregateHistory(expenses, 2025, time.June, 3)
	require.Len(t, history, 3)

	// Oldest first
	assert.Equal(t, time.March, history[0].Month)
	assert.Equal(t, time.April, history[1].Month)
	assert.Equal(t, time.May, history[2].Month)
	assert.InDelta(t, 100, history[0].TotalSpent, 1e-9)
	assert.InDelta(t, 200, history[1].TotalSpent, 1e-9)
	assert.InDelta(t, 300, history[2].TotalSpent, 1e-9)
}

func TestAggregateHistoryCrossesYearBoundary(t *testing.T) {
	expenses := []*model.Expense{
		expense(100, "Food", time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)),
	}

	history := AggregateHistory(expenses, 2025, time.February, 3)
	require.Len(t, history, 3)

	assert.Equal(t, 2024, history[0].Year)
	assert.Equal(t, time.November, history[0].Month)
	assert.Equal(t, time.December, history[1].Month)
	assert.InDelta(t, 100, history[1].TotalSpent, 1e-9)
	assert.Equal(t, time.January, history[2].Month)
}
