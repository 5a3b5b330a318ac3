package service

import (
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/centsible/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestGoal(t *testing.T, service *FinanceService, userID string, target float64) *model.SavingsGoal {
	t.Helper()

	goal, err := service.CreateGoal(testContextWithUser(userID), &CreateGoalRequest{
		Title:        "Emergency fund",
		TargetAmount: target,
		TargetDate:   time.Now().AddDate(0, 6, 0),
		Category:     "Savings",
		Priority:     model.GoalPriorityHigh,
	})
	require.NoError(t, err)
	return goal
}

func TestCreateGoal(t *testing.T) {
	service := newTestService()
	goal := createTestGoal(t, service, "user123", 1000)

	assert.NotEmpty(t, goal.ID)
	assert.Equal(t, "user123", goal.UserID)
	assert.Equal(t, model.GoalStatusActive, goal.Status)
	assert.Zero(t, goal.CurrentAmount)
	assert.Nil(t, goal.CompletedAt)
}

func TestCreateGoalValidation(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	future := time.Now().AddDate(0, 1, 0)

	tests := []struct {
		name string
		req  CreateGoalRequest
	}{
		{"missing title", CreateGoalRequest{TargetAmount: 100, TargetDate: future}},
		{"zero amount", CreateGoalRequest{Title: "x", TargetAmount: 0, TargetDate: future}},
		{"negative amount", CreateGoalRequest{Title: "x", TargetAmount: -1, TargetDate: future}},
		{"past target date", CreateGoalRequest{Title: "x", TargetAmount: 100, TargetDate: time.Now().AddDate(0, 0, -1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateGoal(ctx, &tt.req)
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestCreateGoalDefaultsPriority(t *testing.T) {
	service := newTestService()

	goal, err := service.CreateGoal(testContextWithUser("user123"), &CreateGoalRequest{
		Title:        "Holiday",
		TargetAmount: 500,
		TargetDate:   time.Now().AddDate(0, 3, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, model.GoalPriorityMedium, goal.Priority)
}

func TestAddGoalTransactionDepositCompletesGoal(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 900,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	resp, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 150,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	assert.InDelta(t, 1050, resp.Goal.CurrentAmount, 1e-9)
	assert.Equal(t, model.GoalStatusCompleted, resp.Goal.Status)
	require.NotNil(t, resp.Goal.CompletedAt)
}

func TestAddGoalTransactionWithdrawalReactivatesGoal(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 1050,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	resp, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 200,
		Type:   model.GoalTransactionWithdrawal,
	})
	require.NoError(t, err)

	assert.InDelta(t, 850, resp.Goal.CurrentAmount, 1e-9)
	assert.Equal(t, model.GoalStatusActive, resp.Goal.Status)
	assert.Nil(t, resp.Goal.CompletedAt)
}

func TestAddGoalTransactionInsufficientFunds(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 100,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	_, err = service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 150,
		Type:   model.GoalTransactionWithdrawal,
	})
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	// Nothing was written: balance unchanged, only the deposit recorded
	resp, err := service.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, resp.Goal.CurrentAmount, 1e-9)
	assert.Len(t, resp.Transactions, 1)
}

func TestAddGoalTransactionValidation(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	tests := []struct {
		name string
		req  AddGoalTransactionRequest
	}{
		{"zero amount", AddGoalTransactionRequest{GoalID: goal.ID, Amount: 0, Type: model.GoalTransactionDeposit}},
		{"negative amount", AddGoalTransactionRequest{GoalID: goal.ID, Amount: -10, Type: model.GoalTransactionDeposit}},
		{"bad type", AddGoalTransactionRequest{GoalID: goal.ID, Amount: 10, Type: "transfer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.AddGoalTransaction(ctx, &tt.req)
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestGetGoalIncludesDerivedFigures(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 250,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	resp, err := service.GetGoal(ctx, goal.ID)
	require.NoError(t, err)

	assert.InDelta(t, 25, resp.Progress, 1e-9)
	assert.Greater(t, resp.RequiredMonthlySavings, 0.0)
	assert.True(t, resp.OnTrack)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, model.GoalTransactionDeposit, resp.Transactions[0].Type)
}

func TestUpdateGoalRejectsDirectCompletion(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	completed := model.GoalStatusCompleted
	_, err := service.UpdateGoal(ctx, &UpdateGoalRequest{
		GoalID: goal.ID,
		Patch:  model.GoalPatch{Status: &completed},
	})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestUpdateGoalPauseAndResume(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	paused := model.GoalStatusPaused
	updated, err := service.UpdateGoal(ctx, &UpdateGoalRequest{
		GoalID: goal.ID,
		Patch:  model.GoalPatch{Status: &paused},
	})
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusPaused, updated.Status)

	active := model.GoalStatusActive
	updated, err = service.UpdateGoal(ctx, &UpdateGoalRequest{
		GoalID: goal.ID,
		Patch:  model.GoalPatch{Status: &active},
	})
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusActive, updated.Status)
}

func TestDeleteGoalCascadesTransactions(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")
	goal := createTestGoal(t, service, "user123", 1000)

	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 100,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteGoal(ctx, goal.ID))

	_, err = service.GetGoal(ctx, goal.ID)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestListGoalsFiltersByStatus(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	active := createTestGoal(t, service, "user123", 1000)
	done := createTestGoal(t, service, "user123", 100)
	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: done.ID,
		Amount: 100,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	resp, err := service.ListGoals(ctx, &ListGoalsRequest{Status: model.GoalStatusActive})
	require.NoError(t, err)
	require.Len(t, resp.Goals, 1)
	assert.Equal(t, active.ID, resp.Goals[0].ID)

	all, err := service.ListGoals(ctx, &ListGoalsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Goals, 2)
}

func TestListGoalsRejectsUnknownStatus(t *testing.T) {
	service := newTestService()

	_, err := service.ListGoals(testContextWithUser("user123"), &ListGoalsRequest{Status: "archived"})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestGetGoalAnalysis(t *testing.T) {
	service := newTestService()
	ctx := testContextWithUser("user123")

	goal := createTestGoal(t, service, "user123", 1000)
	_, err := service.AddGoalTransaction(ctx, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 500,
		Type:   model.GoalTransactionDeposit,
	})
	require.NoError(t, err)

	// Another user's goals must not leak into the analysis
	createTestGoal(t, service, "other", 9999)

	analysis, err := service.GetGoalAnalysis(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.TotalGoals)
	assert.Equal(t, 1, analysis.ActiveGoals)
	assert.InDelta(t, 1000, analysis.TotalTargetAmount, 1e-9)
	assert.InDelta(t, 500, analysis.TotalCurrentAmount, 1e-9)
	assert.InDelta(t, 50, analysis.AverageProgress, 1e-9)
}

func TestGoalCrossUserDenied(t *testing.T) {
	service := newTestService()
	goal := createTestGoal(t, service, "owner", 1000)

	intruder := testContextWithUser("intruder")

	_, err := service.GetGoal(intruder, goal.ID)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = service.AddGoalTransaction(intruder, &AddGoalTransactionRequest{
		GoalID: goal.ID,
		Amount: 10,
		Type:   model.GoalTransactionDeposit,
	})
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	err = service.DeleteGoal(intruder, goal.ID)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}
