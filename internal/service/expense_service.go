package service

import (
	"context"
	"time"

	"github.com/centsible/backend/internal/auth"
	"github.com/centsible/backend/internal/insights"
	"github.com/centsible/backend/internal/model"
	"github.com/google/uuid"
)

// CreateExpenseRequest is the payload for creating an expense
type CreateExpenseRequest struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// UpdateExpenseRequest carries a partial update for an expense
type UpdateExpenseRequest struct {
	ExpenseID string             `json:"expenseId"`
	Patch     model.ExpensePatch `json:"patch"`
}

// ListExpensesRequest is the payload for listing expenses
type ListExpensesRequest struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	PageSize  int32      `json:"pageSize"`
	PageToken string     `json:"pageToken"`
}

// ListExpensesResponse is the paged result of a list call
type ListExpensesResponse struct {
	Expenses      []*model.Expense `json:"expenses"`
	NextPageToken string           `json:"nextPageToken"`
}

// CreateExpense creates a new expense for the authenticated user
func (s *FinanceService) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*model.Expense, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		return nil, invalidArgument("expense amount must be positive, got %v", req.Amount)
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	// Dates are stored in UTC so the month a record lands in matches the
	// UTC windows the aggregation queries use
	date = date.UTC()

	expense := &model.Expense{
		ID:          uuid.New().String(),
		UserID:      claims.UID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, classifyError("create expense", err)
	}

	return expense, nil
}

// GetExpense retrieves a single expense owned by the authenticated user
func (s *FinanceService) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, classifyError("get expense", err)
	}

	if _, err := auth.RequireUserAccess(ctx, expense.UserID); err != nil {
		return nil, err
	}

	return expense, nil
}

// UpdateExpense applies a partial update to an expense
func (s *FinanceService) UpdateExpense(ctx context.Context, req *UpdateExpenseRequest) (*model.Expense, error) {
	existing, err := s.GetExpense(ctx, req.ExpenseID)
	if err != nil {
		return nil, err
	}

	if req.Patch.Amount != nil && *req.Patch.Amount <= 0 {
		return nil, invalidArgument("expense amount must be positive, got %v", *req.Patch.Amount)
	}

	updated := req.Patch.Apply(*existing)
	updated.Date = updated.Date.UTC()
	updated.UpdatedAt = time.Now()

	if err := s.store.UpdateExpense(ctx, &updated); err != nil {
		return nil, classifyError("update expense", err)
	}

	return &updated, nil
}

// DeleteExpense deletes an expense owned by the authenticated user
func (s *FinanceService) DeleteExpense(ctx context.Context, expenseID string) error {
	// Ownership check happens in GetExpense
	if _, err := s.GetExpense(ctx, expenseID); err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return classifyError("delete expense", err)
	}
	return nil
}

// ListExpenses lists the authenticated user's expenses, optionally filtered
// by a date range
func (s *FinanceService) ListExpenses(ctx context.Context, req *ListExpensesRequest) (*ListExpensesResponse, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := auth.NormalizePageSize(req.PageSize)

	expenses, nextPageToken, err := s.store.ListExpenses(ctx, claims.UID, req.StartDate, req.EndDate, pageSize, req.PageToken)
	if err != nil {
		return nil, classifyError("list expenses", err)
	}

	return &ListExpensesResponse{
		Expenses:      expenses,
		NextPageToken: nextPageToken,
	}, nil
}

// GetMonthlySummary aggregates the authenticated user's spending for one
// calendar month
func (s *FinanceService) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*insights.MonthSummary, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if month < time.January || month > time.December {
		return nil, invalidArgument("month must be between 1 and 12, got %d", month)
	}

	start, end := monthRange(year, month)
	expenses, err := s.listAllExpenses(ctx, claims.UID, &start, &end)
	if err != nil {
		return nil, err
	}

	summary := insights.AggregateMonth(expenses, year, month)
	return &summary, nil
}

// monthRange returns the inclusive UTC bounds of a calendar month.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// listAllExpenses drains every page of a date-bounded expense query.
// Aggregation needs the complete set, not a single page.
func (s *FinanceService) listAllExpenses(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Expense, error) {
	var all []*model.Expense
	pageToken := ""
	for {
		expenses, nextPageToken, err := s.store.ListExpenses(ctx, userID, startDate, endDate, 1000, pageToken)
		if err != nil {
			return nil, classifyError("list expenses", err)
		}
		all = append(all, expenses...)
		if nextPageToken == "" {
			return all, nil
		}
		pageToken = nextPageToken
	}
}
