package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/centsible/backend/internal/auth"
	"github.com/centsible/backend/internal/insights"
	"github.com/centsible/backend/internal/model"
	"github.com/centsible/backend/internal/store"
	"github.com/google/uuid"
)

// suggestionWindowMonths is how many trailing months of history feed the
// budget suggestion engine.
const suggestionWindowMonths = 3

// SetBudgetRequest is the payload for creating or replacing a month's budget
type SetBudgetRequest struct {
	TotalBudget     float64            `json:"totalBudget"`
	CategoryBudgets map[string]float64 `json:"categoryBudgets"`
	Month           time.Month         `json:"month"`
	Year            int                `json:"year"`
}

// ListAlertsRequest is the payload for listing budget alerts
type ListAlertsRequest struct {
	BudgetID   string `json:"budgetId"`
	UnreadOnly bool   `json:"unreadOnly"`
	PageSize   int32  `json:"pageSize"`
	PageToken  string `json:"pageToken"`
}

// ListAlertsResponse is the paged result of an alert list call
type ListAlertsResponse struct {
	Alerts        []*model.BudgetAlert `json:"alerts"`
	NextPageToken string               `json:"nextPageToken"`
}

// SuggestBudgetsResponse carries the proposed per-category amounts
type SuggestBudgetsResponse struct {
	Suggestions map[string]float64 `json:"suggestions"`
}

// SetBudget creates the budget for a (year, month) or replaces the existing
// one. At most one budget exists per user per month.
func (s *FinanceService) SetBudget(ctx context.Context, req *SetBudgetRequest) (*model.Budget, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if req.TotalBudget < 0 {
		return nil, invalidArgument("total budget must not be negative, got %v", req.TotalBudget)
	}
	if req.Month < time.January || req.Month > time.December {
		return nil, invalidArgument("month must be between 1 and 12, got %d", req.Month)
	}
	for category, amount := range req.CategoryBudgets {
		if amount < 0 {
			return nil, invalidArgument("category budget for %s must not be negative, got %v", category, amount)
		}
	}

	now := time.Now()
	existing, err := s.store.GetBudgetByMonth(ctx, claims.UID, req.Year, req.Month)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, classifyError("get budget", err)
	}

	budget := &model.Budget{
		UserID:          claims.UID,
		TotalBudget:     req.TotalBudget,
		CategoryBudgets: req.CategoryBudgets,
		Month:           req.Month,
		Year:            req.Year,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if budget.CategoryBudgets == nil {
		budget.CategoryBudgets = map[string]float64{}
	}

	if existing != nil {
		budget.ID = existing.ID
		budget.CreatedAt = existing.CreatedAt
		if err := s.store.UpdateBudget(ctx, budget); err != nil {
			return nil, classifyError("update budget", err)
		}
		return budget, nil
	}

	budget.ID = uuid.New().String()
	if err := s.store.CreateBudget(ctx, budget); err != nil {
		return nil, classifyError("create budget", err)
	}

	return budget, nil
}

// GetBudget retrieves the authenticated user's budget for a month.
// Returns NotFound when no budget is defined.
func (s *FinanceService) GetBudget(ctx context.Context, year int, month time.Month) (*model.Budget, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	budget, err := s.store.GetBudgetByMonth(ctx, claims.UID, year, month)
	if err != nil {
		return nil, classifyError("get budget", err)
	}
	return budget, nil
}

// DeleteBudget removes a budget owned by the authenticated user
func (s *FinanceService) DeleteBudget(ctx context.Context, budgetID string) error {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return err
	}

	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return classifyError("get budget", err)
	}
	if _, err := auth.RequireUserAccess(ctx, budget.UserID); err != nil {
		return err
	}

	if err := s.store.DeleteBudget(ctx, budgetID); err != nil {
		return classifyError("delete budget", err)
	}
	return nil
}

// AnalyzeBudget joins a month's budget with its spending and previously
// recorded alerts. A missing budget surfaces as NotFound rather than an
// empty analysis.
func (s *FinanceService) AnalyzeBudget(ctx context.Context, year int, month time.Month) (*insights.BudgetAnalysis, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	budget, err := s.store.GetBudgetByMonth(ctx, claims.UID, year, month)
	if err != nil {
		return nil, classifyError("get budget", err)
	}

	start, end := monthRange(year, month)
	expenses, err := s.listAllExpenses(ctx, claims.UID, &start, &end)
	if err != nil {
		return nil, err
	}

	alerts, _, err := s.store.ListAlerts(ctx, claims.UID, budget.ID, false, 1000, "")
	if err != nil {
		return nil, classifyError("list alerts", err)
	}

	analysis := insights.AnalyzeBudget(budget, expenses, alerts)
	return &analysis, nil
}

// CheckBudgetAlerts re-evaluates the current month's thresholds and persists
// any newly crossed ones. An unread alert with the same budget, category and
// threshold suppresses re-creation, so repeated checks are idempotent until
// the user reads the alert. Returns only the alerts created by this call.
func (s *FinanceService) CheckBudgetAlerts(ctx context.Context, year int, month time.Month) ([]*model.BudgetAlert, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	budget, err := s.store.GetBudgetByMonth(ctx, claims.UID, year, month)
	if err != nil {
		return nil, classifyError("get budget", err)
	}

	start, end := monthRange(year, month)
	expenses, err := s.listAllExpenses(ctx, claims.UID, &start, &end)
	if err != nil {
		return nil, err
	}
	summary := insights.AggregateMonth(expenses, year, month)

	symbol := s.currencySymbol(ctx, claims.UID)

	created := []*model.BudgetAlert{}
	for _, alert := range insights.EvaluateAlerts(budget, summary, symbol, time.Now()) {
		exists, err := s.store.HasUnreadAlert(ctx, alert.BudgetID, alert.Category, alert.Threshold)
		if err != nil {
			return nil, classifyError("check alerts", err)
		}
		if exists {
			continue
		}

		if err := s.store.CreateAlert(ctx, alert); err != nil {
			return nil, classifyError("create alert", err)
		}
		log.Printf("[Budget] Created %s alert for user %s budget %s category=%q",
			alert.Type, alert.UserID, alert.BudgetID, alert.Category)
		created = append(created, alert)
	}

	return created, nil
}

// ListAlerts lists the authenticated user's budget alerts
func (s *FinanceService) ListAlerts(ctx context.Context, req *ListAlertsRequest) (*ListAlertsResponse, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := auth.NormalizePageSize(req.PageSize)

	alerts, nextPageToken, err := s.store.ListAlerts(ctx, claims.UID, req.BudgetID, req.UnreadOnly, pageSize, req.PageToken)
	if err != nil {
		return nil, classifyError("list alerts", err)
	}

	return &ListAlertsResponse{
		Alerts:        alerts,
		NextPageToken: nextPageToken,
	}, nil
}

// MarkAlertRead marks one of the authenticated user's alerts as read.
// Reading an alert re-arms its dedup key, so only the owner may do it.
func (s *FinanceService) MarkAlertRead(ctx context.Context, alertID string) error {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return err
	}

	alert, err := s.store.GetAlert(ctx, alertID)
	if err != nil {
		return classifyError("get alert", err)
	}
	if _, err := auth.RequireUserAccess(ctx, alert.UserID); err != nil {
		return err
	}

	if err := s.store.MarkAlertRead(ctx, alertID); err != nil {
		return classifyError("mark alert read", err)
	}
	return nil
}

// SuggestBudgets proposes per-category budget amounts from the trailing
// months of spending before (year, month)
func (s *FinanceService) SuggestBudgets(ctx context.Context, year int, month time.Month) (*SuggestBudgetsResponse, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if month < time.January || month > time.December {
		return nil, invalidArgument("month must be between 1 and 12, got %d", month)
	}

	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := anchor.AddDate(0, -suggestionWindowMonths, 0)
	end := anchor.Add(-time.Nanosecond)

	expenses, err := s.listAllExpenses(ctx, claims.UID, &start, &end)
	if err != nil {
		return nil, err
	}

	history := insights.AggregateHistory(expenses, year, month, suggestionWindowMonths)
	return &SuggestBudgetsResponse{
		Suggestions: insights.SuggestBudgets(history),
	}, nil
}

// currencySymbol looks up the user's preferred currency symbol, defaulting
// when no user record exists yet.
func (s *FinanceService) currencySymbol(ctx context.Context, userID string) string {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil || user.Currency == "" {
		return model.DefaultCurrency
	}
	return user.Currency
}
