package insights

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/centsible/backend/internal/model"
)

// ErrInsufficientFunds rejects a withdrawal that would take a goal's
// balance negative. The goal is left unchanged.
var ErrInsufficientFunds = errors.New("withdrawal exceeds current balance")

// onTrackTolerance is the fraction of expected progress a goal may lag
// behind while still counting as on track.
const onTrackTolerance = 0.8

// upcomingDeadlineWindow bounds how far ahead a target date may be to count
// as an upcoming deadline.
const upcomingDeadlineWindow = 30 * 24 * time.Hour

// Progress returns the goal's completion percentage, clamped to [0, 100].
func Progress(goal *model.SavingsGoal) float64 {
	if goal.TargetAmount <= 0 {
		return 0
	}
	return math.Min(100, goal.CurrentAmount/goal.TargetAmount*100)
}

// RequiredMonthlySavings returns the contribution needed each month to reach
// the target by the target date, using 30-day months. Past-due goals
// collapse to a one-month horizon, so the full remaining amount comes back
// as the monthly figure.
func RequiredMonthlySavings(goal *model.SavingsGoal, now time.Time) float64 {
	days := goal.TargetDate.Sub(now).Hours() / 24
	monthsRemaining := math.Max(1, math.Ceil(days/30))
	return math.Max(0, (goal.TargetAmount-goal.CurrentAmount)/monthsRemaining)
}

// IsOnTrack reports whether the goal's actual progress keeps pace with a
// linear schedule from creation to the target date, within the tolerance
// band. A degenerate window (target date at or before creation) counts as
// on track once there is any progress at all.
func IsOnTrack(goal *model.SavingsGoal, now time.Time) bool {
	totalDays := goal.TargetDate.Sub(goal.CreatedAt).Hours() / 24
	actual := Progress(goal)

	if totalDays <= 0 {
		return actual > 0
	}

	daysPassed := math.Max(0, now.Sub(goal.CreatedAt).Hours()/24)
	expected := math.Min(100, daysPassed/totalDays*100)
	return actual >= expected*onTrackTolerance
}

// ApplyTransaction computes the goal state after a deposit or withdrawal.
// It returns a modified copy; the input goal is never mutated, so a
// rejected withdrawal leaves no trace. Automatic lifecycle transitions:
// a deposit reaching the target completes an active goal, and a withdrawal
// dropping below the target reactivates a completed one.
func ApplyTransaction(goal model.SavingsGoal, txnType model.GoalTransactionType, amount float64, now time.Time) (model.SavingsGoal, error) {
	switch txnType {
	case model.GoalTransactionDeposit:
		goal.CurrentAmount += amount
	case model.GoalTransactionWithdrawal:
		if amount > goal.CurrentAmount {
			return goal, ErrInsufficientFunds
		}
		goal.CurrentAmount -= amount
	}

	if goal.Status == model.GoalStatusActive && goal.CurrentAmount >= goal.TargetAmount {
		goal.Status = model.GoalStatusCompleted
		completedAt := now
		goal.CompletedAt = &completedAt
	} else if goal.Status == model.GoalStatusCompleted && goal.CurrentAmount < goal.TargetAmount {
		goal.Status = model.GoalStatusActive
		goal.CompletedAt = nil
	}

	goal.UpdatedAt = now
	return goal, nil
}

// GoalAnalysis is the portfolio-level view across all of a user's goals.
type GoalAnalysis struct {
	TotalGoals         int                  `json:"totalGoals"`
	ActiveGoals        int                  `json:"activeGoals"`
	CompletedGoals     int                  `json:"completedGoals"`
	PausedGoals        int                  `json:"pausedGoals"`
	CancelledGoals     int                  `json:"cancelledGoals"`
	TotalTargetAmount  float64              `json:"totalTargetAmount"`
	TotalCurrentAmount float64              `json:"totalCurrentAmount"`
	AverageProgress    float64              `json:"averageProgress"`
	UpcomingDeadlines  []*model.SavingsGoal `json:"upcomingDeadlines"`
	Recommendations    []string             `json:"recommendations"`
}

// goalSnapshot is the precomputed input the recommendation rules read from.
type goalSnapshot struct {
	total             int
	active            int
	completed         int
	overdueActive     int
	lowProgressActive int
	highPriorityOpen  bool
}

// recommendationRule is one independent predicate/message pair. Rules are
// evaluated in a fixed order and each appends at most one recommendation.
type recommendationRule struct {
	applies func(s goalSnapshot) bool
	message func(s goalSnapshot) string
}

var recommendationRules = []recommendationRule{
	{
		applies: func(s goalSnapshot) bool { return s.total == 0 },
		message: func(s goalSnapshot) string {
			return "You have no savings goals yet. Create one to start tracking your progress."
		},
	},
	{
		applies: func(s goalSnapshot) bool { return s.overdueActive > 0 },
		message: func(s goalSnapshot) string {
			return printer.Sprintf("%d of your active goals are past their target date. Consider revising the date or amount.", s.overdueActive)
		},
	},
	{
		applies: func(s goalSnapshot) bool { return s.lowProgressActive > 0 },
		message: func(s goalSnapshot) string {
			return printer.Sprintf("%d of your active goals are below 25%% progress. Small regular deposits add up.", s.lowProgressActive)
		},
	},
	{
		applies: func(s goalSnapshot) bool { return s.highPriorityOpen },
		message: func(s goalSnapshot) string {
			return "Focus your contributions on your high priority goals first."
		},
	},
	{
		applies: func(s goalSnapshot) bool { return s.completed > 0 },
		message: func(s goalSnapshot) string {
			return printer.Sprintf("Congratulations on completing %d goals! Consider setting a new one.", s.completed)
		},
	},
	{
		applies: func(s goalSnapshot) bool { return s.active > 5 },
		message: func(s goalSnapshot) string {
			return "You have more than 5 active goals. Consolidating similar goals makes each easier to reach."
		},
	},
}

// AnalyzeGoals summarizes a set of goals as of now: counts by status,
// portfolio totals, mean progress, deadlines within 30 days, and the
// recommendations produced by the ordered rule list.
func AnalyzeGoals(goals []*model.SavingsGoal, now time.Time) GoalAnalysis {
	analysis := GoalAnalysis{
		TotalGoals:        len(goals),
		UpcomingDeadlines: []*model.SavingsGoal{},
		Recommendations:   []string{},
	}

	snap := goalSnapshot{total: len(goals)}
	deadline := now.Add(upcomingDeadlineWindow)
	var progressSum float64

	for _, goal := range goals {
		analysis.TotalTargetAmount += goal.TargetAmount
		analysis.TotalCurrentAmount += goal.CurrentAmount
		progressSum += Progress(goal)

		switch goal.Status {
		case model.GoalStatusActive:
			analysis.ActiveGoals++
			snap.active++
			if goal.TargetDate.Before(now) {
				snap.overdueActive++
			}
			if Progress(goal) < 25 {
				snap.lowProgressActive++
			}
			if goal.Priority == model.GoalPriorityHigh {
				snap.highPriorityOpen = true
			}
			if !goal.TargetDate.After(deadline) {
				analysis.UpcomingDeadlines = append(analysis.UpcomingDeadlines, goal)
			}
		case model.GoalStatusCompleted:
			analysis.CompletedGoals++
			snap.completed++
		case model.GoalStatusPaused:
			analysis.PausedGoals++
		case model.GoalStatusCancelled:
			analysis.CancelledGoals++
		}
	}

	if len(goals) > 0 {
		analysis.AverageProgress = progressSum / float64(len(goals))
	}

	sort.Slice(analysis.UpcomingDeadlines, func(i, j int) bool {
		return analysis.UpcomingDeadlines[i].TargetDate.Before(analysis.UpcomingDeadlines[j].TargetDate)
	})

	for _, rule := range recommendationRules {
		if rule.applies(snap) {
			analysis.Recommendations = append(analysis.Recommendations, rule.message(snap))
		}
	}

	return analysis
}
