package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/davidfaure/closecall/internal/models"
)

// CallCounter aggregates stored calls for the dashboard.
type CallCounter interface {
	List(ctx context.Context, limit int) ([]*models.Call, error)
	CountByStatus(ctx context.Context) (map[models.CallStatus]int, error)
}

// EmailCounter aggregates stored follow-up emails for the dashboard.
type EmailCounter interface {
	CountByStatus(ctx context.Context) (map[models.EmailStatus]int, error)
}

// DashboardController serves the aggregate numbers the dashboard home shows.
type DashboardController struct {
	calls  CallCounter
	emails EmailCounter
	log    *slog.Logger
}

func NewDashboardController(calls CallCounter, emails EmailCounter, log *slog.Logger) *DashboardController {
	return &DashboardController{
		calls:  calls,
		emails: emails,
		log:    log,
	}
}

// DashboardData holds the dashboard aggregates.
type DashboardData struct {
	RecentCalls  []*models.Call             `json:"recent_calls"`
	CallCounts   map[models.CallStatus]int  `json:"call_counts"`
	TotalCalls   int                        `json:"total_calls"`
	EmailCounts  map[models.EmailStatus]int `json:"email_counts"`
	EmailsToSend int                        `json:"emails_to_send"`
}

// GetDashboard returns recent activity and per-status counts.
func (c *DashboardController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Get recent calls
	recent, err := c.calls.List(ctx, 20)
	if err != nil {
		c.log.Error("failed to load recent calls", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	// Get status counts
	callCounts, err := c.calls.CountByStatus(ctx)
	if err != nil {
		callCounts = make(map[models.CallStatus]int)
	}
	emailCounts, err := c.emails.CountByStatus(ctx)
	if err != nil {
		emailCounts = make(map[models.EmailStatus]int)
	}

	// Calculate totals
	totalCalls := 0
	for _, count := range callCounts {
		totalCalls += count
	}

	respondJSON(w, http.StatusOK, DashboardData{
		RecentCalls:  recent,
		CallCounts:   callCounts,
		TotalCalls:   totalCalls,
		EmailCounts:  emailCounts,
		EmailsToSend: emailCounts[models.EmailStatusToSend],
	})
}
