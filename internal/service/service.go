package service

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/centsible/backend/internal/insights"
	"github.com/centsible/backend/internal/store"
)

// FinanceService implements the expense, budget and goal operations on top
// of a Store. All methods expect authenticated user claims in the context.
type FinanceService struct {
	store store.Store
}

// NewFinanceService creates a new FinanceService
func NewFinanceService(store store.Store) *FinanceService {
	return &FinanceService{
		store: store,
	}
}

// invalidArgument builds an invalid-argument error with a formatted message.
func invalidArgument(format string, args ...interface{}) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// classifyError maps domain and store failures onto connect codes so the
// transport layer can translate them uniformly. Unknown errors pass through
// and surface as internal.
func classifyError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if connect.CodeOf(err) != connect.CodeUnknown {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, fmt.Errorf("failed to %s: %w", operation, err))
	}
	if errors.Is(err, insights.ErrInsufficientFunds) {
		return connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("failed to %s: %w", operation, err))
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
