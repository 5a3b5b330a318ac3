package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/centsible/backend/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names.
const (
	expensesCollection     = "expenses"
	budgetsCollection      = "budgets"
	alertsCollection       = "budgetAlerts"
	goalsCollection        = "goals"
	transactionsCollection = "goalTransactions"
	usersCollection        = "users"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// wrapNotFound translates the Firestore NotFound status into the package
// sentinel so callers can use errors.Is across store implementations.
func wrapNotFound(kind, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1) // +1 to detect next page
	return query, nil
}

// applyDateAwarePagination handles pagination for queries with date range filters.
// Firestore requires OrderBy on inequality fields first, so we use OrderBy("Date") + OrderBy(__name__).
// The cursor must include both the Date value and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		// Fetch the cursor document to get its Date value for composite StartAfter
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// trimPage drops the probe document and derives the next page token.
func trimPage(docs []*firestore.DocumentSnapshot, pageSize int32) ([]*firestore.DocumentSnapshot, string) {
	if pageSize <= 0 {
		pageSize = 100
	}
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		return docs, EncodePageToken(docs[pageSize-1].Ref.ID)
	}
	return docs, ""
}

// Expense operations

// CreateExpense creates a new expense in Firestore
func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

// GetExpense retrieves an expense from Firestore
func (s *FirestoreStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	doc, err := s.client.Collection(expensesCollection).Doc(expenseID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("expense", expenseID, err)
	}

	var expense model.Expense
	if err := doc.DataTo(&expense); err != nil {
		return nil, fmt.Errorf("failed to parse expense: %w", err)
	}
	return &expense, nil
}

// UpdateExpense updates an existing expense in Firestore
func (s *FirestoreStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

// DeleteExpense deletes an expense from Firestore
func (s *FirestoreStore) DeleteExpense(ctx context.Context, expenseID string) error {
	_, err := s.client.Collection(expensesCollection).Doc(expenseID).Delete(ctx)
	return err
}

// ListExpenses lists expenses from Firestore
func (s *FirestoreStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Expense, string, error) {
	query := s.client.Collection(expensesCollection).Query

	// NOTE: Field names must match Go struct field names (PascalCase) as
	// that's how Firestore serializes the structs
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	hasDateFilter := startDate != nil || endDate != nil
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	// When date range filters are present, Firestore requires OrderBy on the
	// range field first.
	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, expensesCollection, pageSize, pageToken)
	} else {
		query, err = applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list expenses: %w", err)
	}

	docs, nextPageToken := trimPage(docs, pageSize)

	expenses := make([]*model.Expense, 0, len(docs))
	for _, doc := range docs {
		var expense model.Expense
		if err := doc.DataTo(&expense); err != nil {
			return nil, "", fmt.Errorf("failed to parse expense: %w", err)
		}
		expenses = append(expenses, &expense)
	}

	return expenses, nextPageToken, nil
}

// Budget operations

// CreateBudget creates a new budget in Firestore
func (s *FirestoreStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

// GetBudget retrieves a budget from Firestore
func (s *FirestoreStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	doc, err := s.client.Collection(budgetsCollection).Doc(budgetID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("budget", budgetID, err)
	}

	var budget model.Budget
	if err := doc.DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &budget, nil
}

// GetBudgetByMonth retrieves the single budget for a (user, year, month) key.
func (s *FirestoreStore) GetBudgetByMonth(ctx context.Context, userID string, year int, month time.Month) (*model.Budget, error) {
	docs, err := s.client.Collection(budgetsCollection).
		Where("UserID", "==", userID).
		Where("Year", "==", year).
		Where("Month", "==", int(month)).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("budget for %s %d-%02d: %w", userID, year, month, ErrNotFound)
	}

	var budget model.Budget
	if err := docs[0].DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &budget, nil
}

// UpdateBudget updates a budget in Firestore
func (s *FirestoreStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

// DeleteBudget deletes a budget from Firestore
func (s *FirestoreStore) DeleteBudget(ctx context.Context, budgetID string) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budgetID).Delete(ctx)
	return err
}

// ListBudgets lists budgets for a user from Firestore
func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Budget, string, error) {
	query := s.client.Collection(budgetsCollection).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	query, err := applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list budgets: %w", err)
	}

	docs, nextPageToken := trimPage(docs, pageSize)

	budgets := make([]*model.Budget, 0, len(docs))
	for _, doc := range docs {
		var budget model.Budget
		if err := doc.DataTo(&budget); err != nil {
			return nil, "", fmt.Errorf("failed to parse budget: %w", err)
		}
		budgets = append(budgets, &budget)
	}

	return budgets, nextPageToken, nil
}

// Budget alert operations

// CreateAlert creates a budget alert in Firestore
func (s *FirestoreStore) CreateAlert(ctx context.Context, alert *model.BudgetAlert) error {
	_, err := s.client.Collection(alertsCollection).Doc(alert.ID).Set(ctx, alert)
	return err
}

// GetAlert retrieves a budget alert from Firestore
func (s *FirestoreStore) GetAlert(ctx context.Context, alertID string) (*model.BudgetAlert, error) {
	doc, err := s.client.Collection(alertsCollection).Doc(alertID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("alert", alertID, err)
	}

	var alert model.BudgetAlert
	if err := doc.DataTo(&alert); err != nil {
		return nil, fmt.Errorf("failed to parse alert: %w", err)
	}
	return &alert, nil
}

// ListAlerts lists budget alerts from Firestore
func (s *FirestoreStore) ListAlerts(ctx context.Context, userID, budgetID string, unreadOnly bool, pageSize int32, pageToken string) ([]*model.BudgetAlert, string, error) {
	query := s.client.Collection(alertsCollection).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}
	if budgetID != "" {
		query = query.Where("BudgetID", "==", budgetID)
	}
	if unreadOnly {
		query = query.Where("IsRead", "==", false)
	}

	query, err := applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list alerts: %w", err)
	}

	docs, nextPageToken := trimPage(docs, pageSize)

	alerts := make([]*model.BudgetAlert, 0, len(docs))
	for _, doc := range docs {
		var alert model.BudgetAlert
		if err := doc.DataTo(&alert); err != nil {
			return nil, "", fmt.Errorf("failed to parse alert: %w", err)
		}
		alerts = append(alerts, &alert)
	}

	return alerts, nextPageToken, nil
}

// MarkAlertRead marks a budget alert as read
func (s *FirestoreStore) MarkAlertRead(ctx context.Context, alertID string) error {
	_, err := s.client.Collection(alertsCollection).Doc(alertID).Update(ctx, []firestore.Update{
		{Path: "IsRead", Value: true},
	})
	if err != nil {
		return wrapNotFound("alert", alertID, err)
	}
	return nil
}

// HasUnreadAlert reports whether an unread alert already exists for the
// (budget, category, threshold) dedup key.
func (s *FirestoreStore) HasUnreadAlert(ctx context.Context, budgetID, category string, threshold float64) (bool, error) {
	docs, err := s.client.Collection(alertsCollection).
		Where("BudgetID", "==", budgetID).
		Where("Category", "==", category).
		Where("Threshold", "==", threshold).
		Where("IsRead", "==", false).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to query alerts: %w", err)
	}
	return len(docs) > 0, nil
}

// Goal operations

// CreateGoal creates a savings goal in Firestore
func (s *FirestoreStore) CreateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	_, err := s.client.Collection(goalsCollection).Doc(goal.ID).Set(ctx, goal)
	return err
}

// GetGoal retrieves a savings goal from Firestore
func (s *FirestoreStore) GetGoal(ctx context.Context, goalID string) (*model.SavingsGoal, error) {
	doc, err := s.client.Collection(goalsCollection).Doc(goalID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("goal", goalID, err)
	}

	var goal model.SavingsGoal
	if err := doc.DataTo(&goal); err != nil {
		return nil, fmt.Errorf("failed to parse goal: %w", err)
	}
	return &goal, nil
}

// UpdateGoal updates a savings goal in Firestore
func (s *FirestoreStore) UpdateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	_, err := s.client.Collection(goalsCollection).Doc(goal.ID).Set(ctx, goal)
	return err
}

// DeleteGoal deletes a savings goal from Firestore
func (s *FirestoreStore) DeleteGoal(ctx context.Context, goalID string) error {
	_, err := s.client.Collection(goalsCollection).Doc(goalID).Delete(ctx)
	return err
}

// ListGoals lists savings goals from Firestore
func (s *FirestoreStore) ListGoals(ctx context.Context, userID string, goalStatus model.GoalStatus, pageSize int32, pageToken string) ([]*model.SavingsGoal, string, error) {
	query := s.client.Collection(goalsCollection).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}
	if goalStatus != "" {
		query = query.Where("Status", "==", string(goalStatus))
	}

	query, err := applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list goals: %w", err)
	}

	docs, nextPageToken := trimPage(docs, pageSize)

	goals := make([]*model.SavingsGoal, 0, len(docs))
	for _, doc := range docs {
		var goal model.SavingsGoal
		if err := doc.DataTo(&goal); err != nil {
			return nil, "", fmt.Errorf("failed to parse goal: %w", err)
		}
		goals = append(goals, &goal)
	}

	return goals, nextPageToken, nil
}

// Goal transaction operations

// CreateGoalTransaction creates a goal transaction in Firestore
func (s *FirestoreStore) CreateGoalTransaction(ctx context.Context, txn *model.GoalTransaction) error {
	_, err := s.client.Collection(transactionsCollection).Doc(txn.ID).Set(ctx, txn)
	return err
}

// ListGoalTransactions lists transactions for a goal from Firestore
func (s *FirestoreStore) ListGoalTransactions(ctx context.Context, goalID string, pageSize int32, pageToken string) ([]*model.GoalTransaction, string, error) {
	query := s.client.Collection(transactionsCollection).Query
	if goalID != "" {
		query = query.Where("GoalID", "==", goalID)
	}

	query, err := applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list goal transactions: %w", err)
	}

	docs, nextPageToken := trimPage(docs, pageSize)

	txns := make([]*model.GoalTransaction, 0, len(docs))
	for _, doc := range docs {
		var txn model.GoalTransaction
		if err := doc.DataTo(&txn); err != nil {
			return nil, "", fmt.Errorf("failed to parse goal transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	return txns, nextPageToken, nil
}

// DeleteGoalTransactions deletes all transactions belonging to a goal.
// Used when goal deletion cascades.
func (s *FirestoreStore) DeleteGoalTransactions(ctx context.Context, goalID string) error {
	docs, err := s.client.Collection(transactionsCollection).
		Where("GoalID", "==", goalID).
		Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to query goal transactions: %w", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete goal transaction %s: %w", doc.Ref.ID, err)
		}
	}
	return nil
}

// User operations

// GetUser retrieves a user record from Firestore
func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("user", userID, err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// UpdateUser upserts a user record in Firestore
func (s *FirestoreStore) UpdateUser(ctx context.Context, user *model.User) error {
	_, err := s.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	return err
}
