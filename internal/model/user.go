package model

import "time"

// User holds per-user settings. The ID is the opaque identifier issued by
// the identity provider; the core never mints its own user IDs.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultCurrency is used until the user picks a currency symbol.
const DefaultCurrency = "$"
