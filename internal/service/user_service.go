package service

import (
	"context"
	"errors"
	"time"

	"github.com/centsible/backend/internal/auth"
	"github.com/centsible/backend/internal/model"
	"github.com/centsible/backend/internal/store"
)

// UpdateUserRequest carries the user-editable profile fields
type UpdateUserRequest struct {
	DisplayName string `json:"displayName"`
	Currency    string `json:"currency"`
}

// GetUser returns the authenticated user's profile, bootstrapping a default
// record from the token claims on first access.
func (s *FinanceService) GetUser(ctx context.Context) (*model.User, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, claims.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, classifyError("get user", err)
	}

	now := time.Now()
	user = &model.User{
		ID:          claims.UID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Currency:    model.DefaultCurrency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, classifyError("create user", err)
	}

	return user, nil
}

// UpdateUser updates the authenticated user's profile
func (s *FinanceService) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Currency != "" {
		user.Currency = req.Currency
	}
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, classifyError("update user", err)
	}

	return user, nil
}
