package insights

import (
	"sort"
	"time"

	"github.com/centsible/backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CategoryStatus classifies how much of a category budget has been used.
type CategoryStatus string

const (
	CategoryStatusSafe     CategoryStatus = "safe"
	CategoryStatusWarning  CategoryStatus = "warning"
	CategoryStatusExceeded CategoryStatus = "exceeded"
)

// CategoryAnalysis is the spending-vs-budget breakdown for one budgeted
// category. Remaining may be negative.
type CategoryAnalysis struct {
	Budgeted       float64        `json:"budgeted"`
	Spent          float64        `json:"spent"`
	Remaining      float64        `json:"remaining"`
	PercentageUsed float64        `json:"percentageUsed"`
	Status         CategoryStatus `json:"status"`
}

// BudgetAnalysis combines a budget definition with one month of spending.
type BudgetAnalysis struct {
	Budget          *model.Budget               `json:"budget"`
	TotalSpent      float64                     `json:"totalSpent"`
	PercentageUsed  float64                     `json:"percentageUsed"`
	RemainingBudget float64                     `json:"remainingBudget"`
	Categories      map[string]CategoryAnalysis `json:"categories"`
	Alerts          []*model.BudgetAlert        `json:"alerts"`
}

// printer localizes money and percentage strings in alert messages.
var printer = message.NewPrinter(language.English)

// AnalyzeBudget computes the spending-vs-budget analysis for the budget's
// month. Only categories present in the budget definition appear in the
// breakdown; spending in unbudgeted categories still counts toward the
// total. Previously recorded alerts are attached as a read-only join.
func AnalyzeBudget(budget *model.Budget, expenses []*model.Expense, alerts []*model.BudgetAlert) BudgetAnalysis {
	summary := AggregateMonth(expenses, budget.Year, budget.Month)

	analysis := BudgetAnalysis{
		Budget:          budget,
		TotalSpent:      summary.TotalSpent,
		RemainingBudget: budget.TotalBudget - summary.TotalSpent,
		Categories:      make(map[string]CategoryAnalysis, len(budget.CategoryBudgets)),
		Alerts:          alerts,
	}
	analysis.PercentageUsed = percentageUsed(summary.TotalSpent, budget.TotalBudget)

	for category, budgeted := range budget.CategoryBudgets {
		spent := summary.CategoryTotals[category]
		pct := percentageUsed(spent, budgeted)
		analysis.Categories[category] = CategoryAnalysis{
			Budgeted:       budgeted,
			Spent:          spent,
			Remaining:      budgeted - spent,
			PercentageUsed: pct,
			Status:         statusFor(pct),
		}
	}

	return analysis
}

// EvaluateAlerts re-checks the total budget and every budgeted category
// against the warning and exceeded thresholds, emitting at most one alert
// per subject. Persistence and deduplication belong to the caller.
func EvaluateAlerts(budget *model.Budget, summary MonthSummary, symbol string, now time.Time) []*model.BudgetAlert {
	var alerts []*model.BudgetAlert

	if alert := thresholdAlert(budget, "", summary.TotalSpent, budget.TotalBudget, symbol, now); alert != nil {
		alerts = append(alerts, alert)
	}

	categories := make([]string, 0, len(budget.CategoryBudgets))
	for category := range budget.CategoryBudgets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		budgeted := budget.CategoryBudgets[category]
		spent := summary.CategoryTotals[category]
		if alert := thresholdAlert(budget, category, spent, budgeted, symbol, now); alert != nil {
			alerts = append(alerts, alert)
		}
	}

	return alerts
}

// thresholdAlert builds the alert for one subject (total budget when
// category is empty) or returns nil when usage is below the warning band.
func thresholdAlert(budget *model.Budget, category string, spent, budgeted float64, symbol string, now time.Time) *model.BudgetAlert {
	pct := percentageUsed(spent, budgeted)
	if pct < model.WarningThreshold {
		return nil
	}

	subject := "your total budget"
	if category != "" {
		subject = printer.Sprintf("your %s budget", category)
	}

	alert := &model.BudgetAlert{
		ID:           uuid.New().String(),
		UserID:       budget.UserID,
		BudgetID:     budget.ID,
		Category:     category,
		CurrentSpent: spent,
		BudgetAmount: budgeted,
		CreatedAt:    now,
	}

	if pct >= model.ExceededThreshold {
		alert.Type = model.AlertTypeExceeded
		alert.Threshold = model.ExceededThreshold
		alert.Message = printer.Sprintf("You've exceeded %s by %s%.2f (%.1f%% used).",
			subject, symbol, spent-budgeted, pct)
		return alert
	}

	alert.Type = model.AlertTypeWarning
	alert.Threshold = model.WarningThreshold
	alert.Message = printer.Sprintf("You've used %.1f%% of %s (%s%.2f of %s%.2f).",
		pct, subject, symbol, spent, symbol, budgeted)
	return alert
}

func percentageUsed(spent, budgeted float64) float64 {
	if budgeted <= 0 {
		return 0
	}
	return spent / budgeted * 100
}

func statusFor(pct float64) CategoryStatus {
	switch {
	case pct >= model.ExceededThreshold:
		return CategoryStatusExceeded
	case pct >= model.WarningThreshold:
		return CategoryStatusWarning
	default:
		return CategoryStatusSafe
	}
}
