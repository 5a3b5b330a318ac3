package service

import (
	"context"
	"log"
	"time"

	"github.com/centsible/backend/internal/auth"
	"github.com/centsible/backend/internal/insights"
	"github.com/centsible/backend/internal/model"
	"github.com/google/uuid"
)

// CreateGoalRequest is the payload for creating a savings goal
type CreateGoalRequest struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	TargetAmount float64            `json:"targetAmount"`
	TargetDate   time.Time          `json:"targetDate"`
	Category     string             `json:"category"`
	Priority     model.GoalPriority `json:"priority"`
}

// UpdateGoalRequest carries a partial update for a goal
type UpdateGoalRequest struct {
	GoalID string          `json:"goalId"`
	Patch  model.GoalPatch `json:"patch"`
}

// GetGoalResponse bundles a goal with its transaction history
type GetGoalResponse struct {
	Goal                   *model.SavingsGoal       `json:"goal"`
	Transactions           []*model.GoalTransaction `json:"transactions"`
	Progress               float64                  `json:"progress"`
	RequiredMonthlySavings float64                  `json:"requiredMonthlySavings"`
	OnTrack                bool                     `json:"onTrack"`
}

// AddGoalTransactionRequest is the payload for a deposit or withdrawal
type AddGoalTransactionRequest struct {
	GoalID      string                    `json:"goalId"`
	Amount      float64                   `json:"amount"`
	Type        model.GoalTransactionType `json:"type"`
	Description string                    `json:"description"`
}

// AddGoalTransactionResponse returns the recorded transaction and the
// goal state after it was applied
type AddGoalTransactionResponse struct {
	Goal        *model.SavingsGoal     `json:"goal"`
	Transaction *model.GoalTransaction `json:"transaction"`
}

// ListGoalsRequest is the payload for listing goals
type ListGoalsRequest struct {
	Status    model.GoalStatus `json:"status"`
	PageSize  int32            `json:"pageSize"`
	PageToken string           `json:"pageToken"`
}

// ListGoalsResponse is the paged result of a goal list call
type ListGoalsResponse struct {
	Goals         []*model.SavingsGoal `json:"goals"`
	NextPageToken string               `json:"nextPageToken"`
}

// CreateGoal creates a new active savings goal. The target date must be in
// the future so pacing calculations start from a real window.
func (s *FinanceService) CreateGoal(ctx context.Context, req *CreateGoalRequest) (*model.SavingsGoal, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, invalidArgument("goal title is required")
	}
	if req.TargetAmount <= 0 {
		return nil, invalidArgument("target amount must be positive, got %v", req.TargetAmount)
	}
	now := time.Now()
	if !req.TargetDate.After(now) {
		return nil, invalidArgument("target date must be in the future")
	}

	priority := req.Priority
	if priority == "" {
		priority = model.GoalPriorityMedium
	}

	goal := &model.SavingsGoal{
		ID:           uuid.New().String(),
		UserID:       claims.UID,
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		Category:     req.Category,
		Priority:     priority,
		Status:       model.GoalStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, classifyError("create goal", err)
	}

	return goal, nil
}

// GetGoal retrieves a goal with its transactions and derived pacing figures
func (s *FinanceService) GetGoal(ctx context.Context, goalID string) (*GetGoalResponse, error) {
	goal, err := s.ownedGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	transactions, _, err := s.store.ListGoalTransactions(ctx, goalID, 1000, "")
	if err != nil {
		return nil, classifyError("list goal transactions", err)
	}

	now := time.Now()
	return &GetGoalResponse{
		Goal:                   goal,
		Transactions:           transactions,
		Progress:               insights.Progress(goal),
		RequiredMonthlySavings: insights.RequiredMonthlySavings(goal, now),
		OnTrack:                insights.IsOnTrack(goal, now),
	}, nil
}

// UpdateGoal applies a partial update to a goal. Completion is computed from
// transactions, never patched in directly.
func (s *FinanceService) UpdateGoal(ctx context.Context, req *UpdateGoalRequest) (*model.SavingsGoal, error) {
	goal, err := s.ownedGoal(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}

	if req.Patch.Status != nil {
		switch *req.Patch.Status {
		case model.GoalStatusActive, model.GoalStatusPaused, model.GoalStatusCancelled:
		case model.GoalStatusCompleted:
			return nil, invalidArgument("goal completion is derived from transactions and cannot be set directly")
		default:
			return nil, invalidArgument("unknown goal status %q", *req.Patch.Status)
		}
	}
	if req.Patch.TargetAmount != nil && *req.Patch.TargetAmount <= 0 {
		return nil, invalidArgument("target amount must be positive, got %v", *req.Patch.TargetAmount)
	}

	updated := req.Patch.Apply(*goal)
	updated.UpdatedAt = time.Now()

	if err := s.store.UpdateGoal(ctx, &updated); err != nil {
		return nil, classifyError("update goal", err)
	}

	return &updated, nil
}

// DeleteGoal deletes a goal and cascades deletion of its transactions
func (s *FinanceService) DeleteGoal(ctx context.Context, goalID string) error {
	if _, err := s.ownedGoal(ctx, goalID); err != nil {
		return err
	}

	if err := s.store.DeleteGoalTransactions(ctx, goalID); err != nil {
		return classifyError("delete goal transactions", err)
	}
	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return classifyError("delete goal", err)
	}

	log.Printf("[Goals] Deleted goal %s and its transactions", goalID)
	return nil
}

// AddGoalTransaction records a deposit or withdrawal against a goal and
// applies the resulting balance and status change. A withdrawal larger than
// the current balance is rejected and nothing is written.
func (s *FinanceService) AddGoalTransaction(ctx context.Context, req *AddGoalTransactionRequest) (*AddGoalTransactionResponse, error) {
	goal, err := s.ownedGoal(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		return nil, invalidArgument("transaction amount must be positive, got %v", req.Amount)
	}
	if req.Type != model.GoalTransactionDeposit && req.Type != model.GoalTransactionWithdrawal {
		return nil, invalidArgument("transaction type must be deposit or withdrawal, got %q", req.Type)
	}

	now := time.Now()
	updated, err := insights.ApplyTransaction(*goal, req.Type, req.Amount, now)
	if err != nil {
		return nil, classifyError("apply goal transaction", err)
	}

	if err := s.store.UpdateGoal(ctx, &updated); err != nil {
		return nil, classifyError("update goal", err)
	}

	txn := &model.GoalTransaction{
		ID:          uuid.New().String(),
		GoalID:      goal.ID,
		UserID:      goal.UserID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        now,
		CreatedAt:   now,
	}
	if err := s.store.CreateGoalTransaction(ctx, txn); err != nil {
		return nil, classifyError("create goal transaction", err)
	}

	if updated.Status == model.GoalStatusCompleted && goal.Status != model.GoalStatusCompleted {
		log.Printf("[Goals] Goal %s completed for user %s", goal.ID, goal.UserID)
	}

	return &AddGoalTransactionResponse{
		Goal:        &updated,
		Transaction: txn,
	}, nil
}

// ListGoals lists the authenticated user's goals, optionally filtered by status
func (s *FinanceService) ListGoals(ctx context.Context, req *ListGoalsRequest) (*ListGoalsResponse, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if req.Status != "" {
		switch req.Status {
		case model.GoalStatusActive, model.GoalStatusCompleted, model.GoalStatusPaused, model.GoalStatusCancelled:
		default:
			return nil, invalidArgument("unknown goal status %q", req.Status)
		}
	}

	pageSize := auth.NormalizePageSize(req.PageSize)

	goals, nextPageToken, err := s.store.ListGoals(ctx, claims.UID, req.Status, pageSize, req.PageToken)
	if err != nil {
		return nil, classifyError("list goals", err)
	}

	return &ListGoalsResponse{
		Goals:         goals,
		NextPageToken: nextPageToken,
	}, nil
}

// GetGoalAnalysis summarizes all of the authenticated user's goals
func (s *FinanceService) GetGoalAnalysis(ctx context.Context) (*insights.GoalAnalysis, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var goals []*model.SavingsGoal
	pageToken := ""
	for {
		page, nextPageToken, err := s.store.ListGoals(ctx, claims.UID, "", 1000, pageToken)
		if err != nil {
			return nil, classifyError("list goals", err)
		}
		goals = append(goals, page...)
		if nextPageToken == "" {
			break
		}
		pageToken = nextPageToken
	}

	analysis := insights.AnalyzeGoals(goals, time.Now())
	return &analysis, nil
}

// ownedGoal fetches a goal and verifies the authenticated user owns it
func (s *FinanceService) ownedGoal(ctx context.Context, goalID string) (*model.SavingsGoal, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, classifyError("get goal", err)
	}

	if _, err := auth.RequireUserAccess(ctx, goal.UserID); err != nil {
		return nil, err
	}

	return goal, nil
}
