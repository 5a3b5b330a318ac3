package model

import "time"

// AlertType distinguishes a warning (approaching the budget) from an
// exceeded (over the budget) alert.
type AlertType string

const (
	AlertTypeWarning  AlertType = "warning"
	AlertTypeExceeded AlertType = "exceeded"
)

// Alert thresholds as percentages of the budgeted amount.
const (
	WarningThreshold  = 80.0
	ExceededThreshold = 100.0
)

// Budget defines the spending limits for one calendar month. At most one
// budget exists per (user, year, month); SetBudget upserts against that key.
type Budget struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	TotalBudget     float64            `json:"totalBudget"`
	CategoryBudgets map[string]float64 `json:"categoryBudgets"`
	Month           time.Month         `json:"month"`
	Year            int                `json:"year"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// BudgetAlert records a threshold crossing for a budget. An empty Category
// means the alert is about the total budget.
type BudgetAlert struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	BudgetID     string    `json:"budgetId"`
	Type         AlertType `json:"type"`
	Category     string    `json:"category,omitempty"`
	Message      string    `json:"message"`
	Threshold    float64   `json:"threshold"`
	CurrentSpent float64   `json:"currentSpent"`
	BudgetAmount float64   `json:"budgetAmount"`
	CreatedAt    time.Time `json:"createdAt"`
	IsRead       bool      `json:"isRead"`
}
