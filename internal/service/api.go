package service

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"github.com/centsible/backend/internal/model"
)

// APIHandler exposes the FinanceService over a JSON HTTP surface
type APIHandler struct {
	service *FinanceService
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(service *FinanceService) *APIHandler {
	return &APIHandler{service: service}
}

// Register wires all API routes onto the mux. Literal segments like
// /goals/analysis take precedence over /goals/{id} patterns.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/expenses", h.handleCreateExpense)
	mux.HandleFunc("GET /api/v1/expenses", h.handleListExpenses)
	mux.HandleFunc("GET /api/v1/expenses/summary", h.handleMonthlySummary)
	mux.HandleFunc("GET /api/v1/expenses/{id}", h.handleGetExpense)
	mux.HandleFunc("PATCH /api/v1/expenses/{id}", h.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", h.handleDeleteExpense)

	mux.HandleFunc("PUT /api/v1/budgets", h.handleSetBudget)
	mux.HandleFunc("GET /api/v1/budgets", h.handleGetBudget)
	mux.HandleFunc("GET /api/v1/budgets/analysis", h.handleAnalyzeBudget)
	mux.HandleFunc("GET /api/v1/budgets/suggestions", h.handleSuggestBudgets)
	mux.HandleFunc("POST /api/v1/budgets/alerts/check", h.handleCheckBudgetAlerts)
	mux.HandleFunc("DELETE /api/v1/budgets/{id}", h.handleDeleteBudget)

	mux.HandleFunc("GET /api/v1/alerts", h.handleListAlerts)
	mux.HandleFunc("POST /api/v1/alerts/{id}/read", h.handleMarkAlertRead)

	mux.HandleFunc("POST /api/v1/goals", h.handleCreateGoal)
	mux.HandleFunc("GET /api/v1/goals", h.handleListGoals)
	mux.HandleFunc("GET /api/v1/goals/analysis", h.handleGoalAnalysis)
	mux.HandleFunc("GET /api/v1/goals/{id}", h.handleGetGoal)
	mux.HandleFunc("PATCH /api/v1/goals/{id}", h.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/v1/goals/{id}", h.handleDeleteGoal)
	mux.HandleFunc("POST /api/v1/goals/{id}/transactions", h.handleAddGoalTransaction)

	mux.HandleFunc("GET /api/v1/user", h.handleGetUser)
	mux.HandleFunc("PATCH /api/v1/user", h.handleUpdateUser)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// writeError translates service errors into HTTP status codes via their
// connect code and emits a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch connect.CodeOf(err) {
	case connect.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case connect.CodePermissionDenied:
		status = http.StatusForbidden
	case connect.CodeNotFound:
		status = http.StatusNotFound
	case connect.CodeInvalidArgument:
		status = http.StatusBadRequest
	case connect.CodeFailedPrecondition:
		status = http.StatusPreconditionFailed
	}

	if status == http.StatusInternalServerError {
		log.Printf("[API] Internal error: %v", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody decodes a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidArgument("invalid request body: %v", err)
	}
	return nil
}

// parseYearMonth reads year and month query parameters, defaulting to the
// current calendar month.
func parseYearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, invalidArgument("invalid year %q", v)
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, invalidArgument("invalid month %q", v)
		}
		month = time.Month(parsed)
	}

	return year, month, nil
}

// parsePaging reads pageSize and pageToken query parameters
func parsePaging(r *http.Request) (int32, string) {
	var pageSize int32
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			pageSize = int32(parsed)
		}
	}
	return pageSize, r.URL.Query().Get("pageToken")
}

// Expense handlers

func (h *APIHandler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.service.CreateExpense(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *APIHandler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	req := ListExpensesRequest{}
	req.PageSize, req.PageToken = parsePaging(r)

	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, invalidArgument("invalid startDate %q", v))
			return
		}
		req.StartDate = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, invalidArgument("invalid endDate %q", v))
			return
		}
		req.EndDate = &t
	}

	resp, err := h.service.ListExpenses(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.service.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *APIHandler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch model.ExpensePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.service.UpdateExpense(r.Context(), &UpdateExpenseRequest{
		ExpenseID: r.PathValue("id"),
		Patch:     patch,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *APIHandler) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *APIHandler) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.service.GetMonthlySummary(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Budget handlers

func (h *APIHandler) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req SetBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	budget, err := h.service.SetBudget(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (h *APIHandler) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	budget, err := h.service.GetBudget(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (h *APIHandler) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *APIHandler) handleAnalyzeBudget(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	analysis, err := h.service.AnalyzeBudget(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *APIHandler) handleSuggestBudgets(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.SuggestBudgets(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleCheckBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	alerts, err := h.service.CheckBudgetAlerts(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// Alert handlers

func (h *APIHandler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	req := ListAlertsRequest{
		BudgetID:   r.URL.Query().Get("budgetId"),
		UnreadOnly: r.URL.Query().Get("unreadOnly") == "true",
	}
	req.PageSize, req.PageToken = parsePaging(r)

	resp, err := h.service.ListAlerts(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAlertRead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Goal handlers

func (h *APIHandler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	goal, err := h.service.CreateGoal(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *APIHandler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	req := ListGoalsRequest{
		Status: model.GoalStatus(r.URL.Query().Get("status")),
	}
	req.PageSize, req.PageToken = parsePaging(r)

	resp, err := h.service.ListGoals(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleGoalAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.GetGoalAnalysis(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *APIHandler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch model.GoalPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	goal, err := h.service.UpdateGoal(r.Context(), &UpdateGoalRequest{
		GoalID: r.PathValue("id"),
		Patch:  patch,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *APIHandler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *APIHandler) handleAddGoalTransaction(w http.ResponseWriter, r *http.Request) {
	var req AddGoalTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.GoalID = r.PathValue("id")

	resp, err := h.service.AddGoalTransaction(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// User handlers

func (h *APIHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
