package service

import (
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/centsible/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestBudget(t *testing.T, service *FinanceService, userID string) *model.Budget {
	t.Helper()

	budget, err := service.SetBudget(testContextWithUser(userID), &SetBudgetRequest{
		TotalBudget: 1000,
		CategoryBudgets: map[string]float64{
			"Food":      300,
			"Transport": 100,
		},
		Month: time.June,
		Year:  2025,
	})
	require.NoError(t, err)
	return budget
}

func addJuneExpense(t *testing.T, service *FinanceService, userID string, amount float64, category string) {
	t.Helper()

	_, err := service.CreateExpense(testContextWithUser(userID), &CreateExpenseRequest{
		Amount:   amount,
		Category: category,
		Date:     time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestSetBudgetCreatesThenReplaces(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	first := setTestBudget(t, service, "user123")

	second, err := service.SetBudget(ctx, &SetBudgetRequest{
		TotalBudget:     2000,
		CategoryBudgets: map[string]float64{"Food": 800},
		Month:           time.June,
		Year:            2025,
	})
	require.NoError(t, err)

	// Upsert keeps the identity of the month's budget
	assert.Equal(t, first.ID, second.ID)
	assert.InDelta(t, 2000, second.TotalBudget, 1e-9)

	got, err := service.GetBudget(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.InDelta(t, 2000, got.TotalBudget, 1e-9)
	assert.Len(t, got.CategoryBudgets, 1)
}

func TestSetBudgetValidation(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	tests := []struct {
		name string
		req  SetBudgetRequest
	}{
		{"negative total", SetBudgetRequest{TotalBudget: -100, Month: time.June, Year: 2025}},
		{"month out of range", SetBudgetRequest{TotalBudget: 100, Month: 13, Year: 2025}},
		{"negative category", SetBudgetRequest{
			TotalBudget:     100,
			CategoryBudgets: map[string]float64{"Food": -1},
			Month:           time.June,
			Year:            2025,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SetBudget(ctx, &tt.req)
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestSetBudgetZeroTotalAllowed(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	budget, err := service.SetBudget(ctx, &SetBudgetRequest{
		TotalBudget: 0,
		Month:       time.June,
		Year:        2025,
	})
	require.NoError(t, err)
	assert.Zero(t, budget.TotalBudget)

	addJuneExpense(t, service, "user123", 50, "Food")

	// Spending against a zero budget reads as 0% used, not a division error
	analysis, err := service.AnalyzeBudget(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.InDelta(t, 50, analysis.TotalSpent, 1e-9)
	assert.Zero(t, analysis.PercentageUsed)
	assert.InDelta(t, -50, analysis.RemainingBudget, 1e-9)
}

func TestGetBudgetNotFound(t *testing.T) {
	service := newTestService()

	_, err := service.GetBudget(testContextWithUser("user123"), 2025, time.June)
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestAnalyzeBudgetMissingBudget(t *testing.T) {
	service := newTestService()

	// No budget defined: analysis surfaces NotFound, not an empty result
	_, err := service.AnalyzeBudget(testContextWithUser("user123"), 2025, time.June)
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestAnalyzeBudgetJoinsSpending(t *testing.T) {
	service := newTestService()
	setTestBudget(t, service, "user123")
	addJuneExpense(t, service, "user123", 250, "Food")
	addJuneExpense(t, service, "user123", 60, "Entertainment")

	analysis, err := service.AnalyzeBudget(testContextWithUser("user123"), 2025, time.June)
	require.NoError(t, err)

	assert.InDelta(t, 310, analysis.TotalSpent, 1e-9)
	assert.InDelta(t, 31, analysis.PercentageUsed, 1e-9)
	require.Contains(t, analysis.Categories, "Food")
	assert.InDelta(t, 83.3333333, analysis.Categories["Food"].PercentageUsed, 1e-6)
	assert.NotContains(t, analysis.Categories, "Entertainment")
}

func TestCheckBudgetAlertsCreatesAndDeduplicates(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	setTestBudget(t, service, "user123")
	addJuneExpense(t, service, "user123", 250, "Food") // 83.3% of Food budget

	created, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, model.AlertTypeWarning, created[0].Type)
	assert.Equal(t, "Food", created[0].Category)

	// Second check is a no-op while the alert stays unread
	again, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.Empty(t, again)

	// Reading the alert re-arms the check
	require.NoError(t, service.MarkAlertRead(ctx, created[0].ID))
	rearmed, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.Len(t, rearmed, 1)
}

func TestCheckBudgetAlertsEscalation(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	setTestBudget(t, service, "user123")
	addJuneExpense(t, service, "user123", 250, "Food")

	created, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Crossing 100% creates the exceeded alert even though the warning
	// alert is still unread: the dedup key includes the threshold
	addJuneExpense(t, service, "user123", 100, "Food")
	escalated, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	require.Len(t, escalated, 1)
	assert.Equal(t, model.AlertTypeExceeded, escalated[0].Type)
}

func TestCheckBudgetAlertsUsesUserCurrency(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	_, err := service.UpdateUser(ctx, &UpdateUserRequest{Currency: "€"})
	require.NoError(t, err)

	setTestBudget(t, service, "user123")
	addJuneExpense(t, service, "user123", 250, "Food")

	created, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Contains(t, created[0].Message, "€250.00")
}

func TestListAlertsUnreadOnly(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	setTestBudget(t, service, "user123")
	addJuneExpense(t, service, "user123", 250, "Food")
	addJuneExpense(t, service, "user123", 95, "Transport")

	created, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	require.Len(t, created, 2)

	require.NoError(t, service.MarkAlertRead(ctx, created[0].ID))

	resp, err := service.ListAlerts(ctx, &ListAlertsRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 1)

	all, err := service.ListAlerts(ctx, &ListAlertsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Alerts, 2)
}

func TestSuggestBudgets(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	mkExpense := func(month time.Month, amount float64) {
		_, err := service.CreateExpense(ctx, &CreateExpenseRequest{
			Amount:   amount,
			Category: "Food",
			Date:     time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	// Spending in two of the three trailing months before June
	mkExpense(time.March, 100)
	mkExpense(time.April, 200)

	resp, err := service.SuggestBudgets(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.InDelta(t, 180, resp.Suggestions["Food"], 1e-9)
}

func TestSuggestBudgetsNoHistory(t *testing.T) {
	service := newTestService()

	resp, err := service.SuggestBudgets(testContextWithUser("user123"), 2025, time.June)
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)
}

func TestMarkAlertReadCrossUserDenied(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("owner")
	setTestBudget(t, service, "owner")
	addJuneExpense(t, service, "owner", 250, "Food")

	created, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	require.Len(t, created, 1)

	err = service.MarkAlertRead(testContextWithUser("intruder"), created[0].ID)
	require.Error(t, err)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	// The owner's alert is still unread and the dedup key still armed
	resp, err := service.ListAlerts(ctx, &ListAlertsRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 1)

	again, err := service.CheckBudgetAlerts(ctx, 2025, time.June)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMarkAlertReadMissing(t *testing.T) {
	service := newTestService()

	err := service.MarkAlertRead(testContextWithUser("user123"), "missing")
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestDeleteBudgetCrossUserDenied(t *testing.T) {
	service := newTestService()
	budget := setTestBudget(t, service, "owner")

	err := service.DeleteBudget(testContextWithUser("intruder"), budget.ID)
	require.Error(t, err)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}
