package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/centsible/backend/internal/model"
	"github.com/google/uuid"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	// Storage maps
	expenses         map[string]*model.Expense
	budgets          map[string]*model.Budget
	alerts           map[string]*model.BudgetAlert
	goals            map[string]*model.SavingsGoal
	goalTransactions map[string]*model.GoalTransaction
	users            map[string]*model.User
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses:         make(map[string]*model.Expense),
		budgets:          make(map[string]*model.Budget),
		alerts:           make(map[string]*model.BudgetAlert),
		goals:            make(map[string]*model.SavingsGoal),
		goalTransactions: make(map[string]*model.GoalTransaction),
		users:            make(map[string]*model.User),
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	// Find cursor position
	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				// If we've reached the end without finding a greater ID
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	// Slice from startIdx
	ids = ids[startIdx:]

	// Apply page size
	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// Expense operations

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expense, ok := m.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}

	return expense, nil
}

func (m *MemoryStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[expense.ID]; !ok {
		return fmt.Errorf("expense %s: %w", expense.ID, ErrNotFound)
	}

	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.expenses, expenseID)
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Expense, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// First pass: collect matching IDs
	var matchingIDs []string
	for id, expense := range m.expenses {
		if userID != "" && expense.UserID != userID {
			continue
		}
		if startDate != nil && expense.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && expense.Date.After(*endDate) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Expense, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.expenses[id])
	}
	return result, nextToken, nil
}

// Budget operations

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}

	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[budgetID]
	if !ok {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	return budget, nil
}

func (m *MemoryStore) GetBudgetByMonth(ctx context.Context, userID string, year int, month time.Month) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, budget := range m.budgets {
		if budget.UserID == userID && budget.Year == year && budget.Month == month {
			return budget, nil
		}
	}

	return nil, fmt.Errorf("budget for %s %d-%02d: %w", userID, year, month, ErrNotFound)
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budget.ID]; !ok {
		return fmt.Errorf("budget %s: %w", budget.ID, ErrNotFound)
	}

	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.budgets, budgetID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Budget, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, budget := range m.budgets {
		if userID != "" && budget.UserID != userID {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Budget, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.budgets[id])
	}
	return result, nextToken, nil
}

// Budget alert operations

func (m *MemoryStore) CreateAlert(ctx context.Context, alert *model.BudgetAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	m.alerts[alert.ID] = alert
	return nil
}

func (m *MemoryStore) GetAlert(ctx context.Context, alertID string) (*model.BudgetAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}

	return alert, nil
}

func (m *MemoryStore) ListAlerts(ctx context.Context, userID, budgetID string, unreadOnly bool, pageSize int32, pageToken string) ([]*model.BudgetAlert, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, alert := range m.alerts {
		if userID != "" && alert.UserID != userID {
			continue
		}
		if budgetID != "" && alert.BudgetID != budgetID {
			continue
		}
		if unreadOnly && alert.IsRead {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.BudgetAlert, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.alerts[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) MarkAlertRead(ctx context.Context, alertID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}

	alert.IsRead = true
	return nil
}

func (m *MemoryStore) HasUnreadAlert(ctx context.Context, budgetID, category string, threshold float64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, alert := range m.alerts {
		if alert.BudgetID == budgetID && alert.Category == category &&
			alert.Threshold == threshold && !alert.IsRead {
			return true, nil
		}
	}

	return false, nil
}

// Goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}

	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, goalID string) (*model.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}

	return goal, nil
}

func (m *MemoryStore) UpdateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goal.ID]; !ok {
		return fmt.Errorf("goal %s: %w", goal.ID, ErrNotFound)
	}

	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.goals, goalID)
	return nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string, status model.GoalStatus, pageSize int32, pageToken string) ([]*model.SavingsGoal, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, goal := range m.goals {
		if userID != "" && goal.UserID != userID {
			continue
		}
		if status != "" && goal.Status != status {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.SavingsGoal, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.goals[id])
	}
	return result, nextToken, nil
}

// Goal transaction operations

func (m *MemoryStore) CreateGoalTransaction(ctx context.Context, txn *model.GoalTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	m.goalTransactions[txn.ID] = txn
	return nil
}

func (m *MemoryStore) ListGoalTransactions(ctx context.Context, goalID string, pageSize int32, pageToken string) ([]*model.GoalTransaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, txn := range m.goalTransactions {
		if goalID != "" && txn.GoalID != goalID {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.GoalTransaction, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.goalTransactions[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) DeleteGoalTransactions(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, txn := range m.goalTransactions {
		if txn.GoalID == goalID {
			delete(m.goalTransactions, id)
		}
	}
	return nil
}

// User operations

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return user, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user
	return nil
}
