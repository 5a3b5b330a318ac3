package model

import "time"

// GoalStatus is the lifecycle state of a savings goal. Transitions between
// active and completed are computed when a transaction is applied;
// paused and cancelled are only reachable via an explicit update.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusCancelled GoalStatus = "cancelled"
)

// GoalPriority orders goals by importance.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// GoalTransactionType distinguishes deposits from withdrawals.
type GoalTransactionType string

const (
	GoalTransactionDeposit    GoalTransactionType = "deposit"
	GoalTransactionWithdrawal GoalTransactionType = "withdrawal"
)

// SavingsGoal tracks progress toward a target amount by a target date.
// CurrentAmount always equals the signed sum of the goal's transactions.
type SavingsGoal struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	TargetAmount  float64      `json:"targetAmount"`
	CurrentAmount float64      `json:"currentAmount"`
	TargetDate    time.Time    `json:"targetDate"`
	Category      string       `json:"category"`
	Priority      GoalPriority `json:"priority"`
	Status        GoalStatus   `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
}

// GoalTransaction is an append-only deposit or withdrawal against a goal.
// Deleting a goal cascades deletion of its transactions.
type GoalTransaction struct {
	ID          string              `json:"id"`
	GoalID      string              `json:"goalId"`
	UserID      string              `json:"userId"`
	Amount      float64             `json:"amount"`
	Type        GoalTransactionType `json:"type"`
	Description string              `json:"description,omitempty"`
	Date        time.Time           `json:"date"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// GoalPatch carries optional field updates for a goal. Nil fields are left
// untouched by Apply. Status here covers the explicit transitions only
// (paused, cancelled, back to active); completion is never patched in.
type GoalPatch struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	TargetAmount *float64      `json:"targetAmount,omitempty"`
	TargetDate   *time.Time    `json:"targetDate,omitempty"`
	Category     *string       `json:"category,omitempty"`
	Priority     *GoalPriority `json:"priority,omitempty"`
	Status       *GoalStatus   `json:"status,omitempty"`
}

// Apply merges the patch into a copy of the goal and returns it.
func (p GoalPatch) Apply(g SavingsGoal) SavingsGoal {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.TargetDate != nil {
		g.TargetDate = *p.TargetDate
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.Priority != nil {
		g.Priority = *p.Priority
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	return g
}
