package model

import "time"

// FallbackCategory is assigned to expenses recorded without a category.
const FallbackCategory = "Others"

// Expense is a single spending record owned by a user. Immutable once
// stored except through an explicit ExpensePatch.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ExpensePatch carries optional field updates for an expense. Nil fields
// are left untouched by Apply.
type ExpensePatch struct {
	Amount      *float64   `json:"amount,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// Apply merges the patch into a copy of the expense and returns it.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}
