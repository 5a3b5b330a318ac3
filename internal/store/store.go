package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/centsible/backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested record does not exist. Callers
// test for it with errors.Is and map it to their own NotFound failure.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations used by the service
type Store interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Expense, string, error)

	// Budget operations. At most one budget exists per (user, year, month);
	// the service enforces upsert semantics via GetBudgetByMonth.
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, budgetID string) (*model.Budget, error)
	GetBudgetByMonth(ctx context.Context, userID string, year int, month time.Month) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
	ListBudgets(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Budget, string, error)

	// Budget alert operations
	CreateAlert(ctx context.Context, alert *model.BudgetAlert) error
	GetAlert(ctx context.Context, alertID string) (*model.BudgetAlert, error)
	ListAlerts(ctx context.Context, userID, budgetID string, unreadOnly bool, pageSize int32, pageToken string) ([]*model.BudgetAlert, string, error)
	MarkAlertRead(ctx context.Context, alertID string) error
	HasUnreadAlert(ctx context.Context, budgetID, category string, threshold float64) (bool, error)

	// Goal operations
	CreateGoal(ctx context.Context, goal *model.SavingsGoal) error
	GetGoal(ctx context.Context, goalID string) (*model.SavingsGoal, error)
	UpdateGoal(ctx context.Context, goal *model.SavingsGoal) error
	DeleteGoal(ctx context.Context, goalID string) error
	ListGoals(ctx context.Context, userID string, status model.GoalStatus, pageSize int32, pageToken string) ([]*model.SavingsGoal, string, error)

	// Goal transaction operations. Transactions are append-only; deleting a
	// goal cascades through DeleteGoalTransactions.
	CreateGoalTransaction(ctx context.Context, txn *model.GoalTransaction) error
	ListGoalTransactions(ctx context.Context, goalID string, pageSize int32, pageToken string) ([]*model.GoalTransaction, string, error)
	DeleteGoalTransactions(ctx context.Context, goalID string) error

	// User operations
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
