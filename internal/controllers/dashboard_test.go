package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidfaure/closecall/internal/models"
)

type fakeCallCounter struct {
	calls   []*models.Call
	counts  map[models.CallStatus]int
	listErr error
}

func (f *fakeCallCounter) List(_ context.Context, _ int) ([]*models.Call, error) {
	return f.calls, f.listErr
}

func (f *fakeCallCounter) CountByStatus(_ context.Context) (map[models.CallStatus]int, error) {
	return f.counts, nil
}

type fakeEmailCounter struct {
	counts map[models.EmailStatus]int
	err    error
}

func (f *fakeEmailCounter) CountByStatus(_ context.Context) (map[models.EmailStatus]int, error) {
	return f.counts, f.err
}

func TestGetDashboard(t *testing.T) {
	req := require.New(t)

	calls := &fakeCallCounter{
		calls: []*models.Call{{ClientName: "Acme"}},
		counts: map[models.CallStatus]int{
			models.CallStatusCompleted: 7,
			models.CallStatusFailed:    2,
		},
	}
	emails := &fakeEmailCounter{
		counts: map[models.EmailStatus]int{
			models.EmailStatusToSend: 3,
			models.EmailStatusSent:   4,
		},
	}
	ctrl := NewDashboardController(calls, emails, slog.Default())

	w := httptest.NewRecorder()
	ctrl.GetDashboard(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	req.Equal(http.StatusOK, w.Code)

	var data DashboardData
	req.NoError(json.Unmarshal(w.Body.Bytes(), &data))
	req.Len(data.RecentCalls, 1)
	req.Equal(9, data.TotalCalls)
	req.Equal(3, data.EmailsToSend)
	req.Equal(4, data.EmailCounts[models.EmailStatusSent])
}

func TestGetDashboard_CountFailureTolerated(t *testing.T) {
	req := require.New(t)

	calls := &fakeCallCounter{counts: map[models.CallStatus]int{}}
	emails := &fakeEmailCounter{err: errors.New("db down")}
	ctrl := NewDashboardController(calls, emails, slog.Default())

	w := httptest.NewRecorder()
	ctrl.GetDashboard(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	req.Equal(http.StatusOK, w.Code)

	var data DashboardData
	req.NoError(json.Unmarshal(w.Body.Bytes(), &data))
	req.Equal(0, data.TotalCalls)
	req.Equal(0, data.EmailsToSend)
}

func TestGetDashboard_ListFailure(t *testing.T) {
	req := require.New(t)

	calls := &fakeCallCounter{listErr: errors.New("db down")}
	ctrl := NewDashboardController(calls, &fakeEmailCounter{}, slog.Default())

	w := httptest.NewRecorder()
	ctrl.GetDashboard(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	req.Equal(http.StatusInternalServerError, w.Code)
}
