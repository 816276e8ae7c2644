package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidfaure/closecall/internal/notify"
)

type fakeInvoker struct {
	payload  json.RawMessage
	err      error
	calls    int
	lastName string
	lastBody any
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, body any) (json.RawMessage, error) {
	f.calls++
	f.lastName = name
	f.lastBody = body
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type recordingNotifier struct {
	notifications []notify.Notification
}

func (r *recordingNotifier) Notify(n notify.Notification) {
	r.notifications = append(r.notifications, n)
}

func newTestAnalyzer(invoker *fakeInvoker) (*CallAnalyzer, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewCallAnalyzer(invoker, notifier, slog.Default()), notifier
}

func TestAnalyzeCall_Success(t *testing.T) {
	req := require.New(t)

	invoker := &fakeInvoker{payload: json.RawMessage(`{
		"summary": "Client intéressé par l'offre premium",
		"key_points": ["budget validé", "décision en septembre"],
		"tags": ["prometteur", "premium"],
		"follow_up_email": {"subject": "Suite à notre appel", "body": "Bonjour,..."}
	}`)}
	analyzer, notifier := newTestAnalyzer(invoker)

	result, err := analyzer.AnalyzeCall(context.Background(), AnalysisRequest{
		Transcript: "Bonjour, merci de prendre le temps...",
		ClientName: "Martin Dupont",
		Duration:   754,
	})

	req.NoError(err)
	req.Equal("Client intéressé par l'offre premium", result.Summary)
	req.Equal([]string{"budget validé", "décision en septembre"}, result.KeyPoints)
	req.Equal([]string{"prometteur", "premium"}, result.Tags)
	req.Equal("Suite à notre appel", result.FollowUpEmail.Subject)

	req.Equal(1, invoker.calls)
	req.Equal("analyze-call", invoker.lastName)

	// Success path must not notify.
	req.Empty(notifier.notifications)
}

func TestAnalyzeCall_RequestWireFormat(t *testing.T) {
	req := require.New(t)

	body, err := json.Marshal(AnalysisRequest{
		Transcript: "t",
		ClientName: "c",
		Duration:   30,
	})
	req.NoError(err)
	req.JSONEq(`{"transcript":"t","clientName":"c","duration":30}`, string(body))

	// context is passed through when present, omitted otherwise
	body, err = json.Marshal(AnalysisRequest{
		Transcript: "t",
		ClientName: "c",
		Duration:   30,
		Context:    "premier appel",
	})
	req.NoError(err)
	req.JSONEq(`{"transcript":"t","clientName":"c","duration":30,"context":"premier appel"}`, string(body))
}

func TestAnalyzeCall_FailureNotifiesOnceAndReturnsOriginalError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{
			name:        "quota exceeded",
			err:         fnError("You exceeded your current quota, please check your plan", "", ""),
			wantMessage: msgQuotaExceeded,
		},
		{
			name:        "quota via provider code",
			err:         fnError("upstream rejected the request", "", "insufficient_quota"),
			wantMessage: msgQuotaExceeded,
		},
		{
			name:        "invalid api key",
			err:         fnError("request rejected", "api_key", ""),
			wantMessage: msgInvalidAPIKey,
		},
		{
			name:        "missing configuration",
			err:         fnError("", "configuration", ""),
			wantMessage: msgMissingConfiguration,
		},
		{
			name:        "unknown failure",
			err:         fnError("", "", ""),
			wantMessage: msgGenericUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			invoker := &fakeInvoker{err: tt.err}
			analyzer, notifier := newTestAnalyzer(invoker)

			result, err := analyzer.AnalyzeCall(context.Background(), AnalysisRequest{
				Transcript: "t", ClientName: "c", Duration: 1,
			})

			req.Nil(result)
			// The original error propagates unchanged.
			req.ErrorIs(err, tt.err)
			// Exactly one notification per failure.
			req.Len(notifier.notifications, 1)
			req.Equal(notify.LevelError, notifier.notifications[0].Level)
			req.Equal(tt.wantMessage, notifier.notifications[0].Message)
		})
	}
}

func TestAnalyzeCall_GenericFailureCarriesMessage(t *testing.T) {
	req := require.New(t)

	cause := errors.New("connection refused")
	invoker := &fakeInvoker{err: cause}
	analyzer, notifier := newTestAnalyzer(invoker)

	_, err := analyzer.AnalyzeCall(context.Background(), AnalysisRequest{
		Transcript: "t", ClientName: "c", Duration: 1,
	})

	req.ErrorIs(err, cause)
	req.Len(notifier.notifications, 1)
	req.Contains(notifier.notifications[0].Message, "connection refused")
}

func TestAnalyzeCall_NoRetry(t *testing.T) {
	req := require.New(t)

	invoker := &fakeInvoker{err: fnError("transient glitch", "", "")}
	analyzer, _ := newTestAnalyzer(invoker)

	_, err := analyzer.AnalyzeCall(context.Background(), AnalysisRequest{
		Transcript: "t", ClientName: "c", Duration: 1,
	})

	req.Error(err)
	req.Equal(1, invoker.calls)
}

func TestAnalyzeCall_MalformedResult(t *testing.T) {
	req := require.New(t)

	invoker := &fakeInvoker{payload: json.RawMessage(`{"key_points": []}`)}
	analyzer, notifier := newTestAnalyzer(invoker)

	result, err := analyzer.AnalyzeCall(context.Background(), AnalysisRequest{
		Transcript: "t", ClientName: "c", Duration: 1,
	})

	req.Nil(result)
	req.ErrorIs(err, ErrMalformedResult)
	req.Len(notifier.notifications, 1)
}

func TestAnalyzeCall_UndecodableResult(t *testing.T) {
	req := require.New(t)

	invoker := &fakeInvoker{payload: json.RawMessage(`not json at all`)}
	analyzer, notifier := newTestAnalyzer(invoker)

	result, err := analyzer.AnalyzeCall(context.Background(), AnalysisRequest{
		Transcript: "t", ClientName: "c", Duration: 1,
	})

	req.Nil(result)
	req.Error(err)
	req.Len(notifier.notifications, 1)
}
