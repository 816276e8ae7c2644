package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/davidfaure/closecall/internal/metrics"
	"github.com/davidfaure/closecall/internal/notify"
)

// ErrMalformedResult is returned when the remote function answers 2xx but
// the payload is missing the summary.
var ErrMalformedResult = errors.New("analysis result is missing a summary")

// Invoker is the slice of the functions client the services need.
type Invoker interface {
	Invoke(ctx context.Context, name string, body any) (json.RawMessage, error)
}

// AnalysisRequest is the body sent to the analyze-call function. Field names
// match what the function expects on the wire.
type AnalysisRequest struct {
	Transcript string `json:"transcript"`
	ClientName string `json:"clientName"`
	Duration   int    `json:"duration"`
	Context    string `json:"context,omitempty"`
}

// EmailDraft is the generated follow-up email inside an analysis result.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AnalysisResult is the output of a successful call analysis.
// key_points keeps insertion order; tags may contain duplicates, this layer
// does not dedupe them.
type AnalysisResult struct {
	Summary       string     `json:"summary"`
	KeyPoints     []string   `json:"key_points"`
	Tags          []string   `json:"tags"`
	FollowUpEmail EmailDraft `json:"follow_up_email"`
}

// CallAnalyzer runs a sales call transcript through the remote analyze-call
// function and translates failures into user notifications.
//
// The error contract matters to callers: every failure is classified and
// notified exactly once, then the ORIGINAL error is returned so the caller
// can apply its own handling (stop a spinner, mark the call failed, ...).
type CallAnalyzer struct {
	invoker  Invoker
	notifier notify.Notifier
	log      *slog.Logger
}

func NewCallAnalyzer(invoker Invoker, notifier notify.Notifier, log *slog.Logger) *CallAnalyzer {
	return &CallAnalyzer{
		invoker:  invoker,
		notifier: notifier,
		log:      log,
	}
}

// AnalyzeCall invokes the analyze-call function once. No retry, no backoff:
// a request runs to completion or failure.
//
// Transcript content is not validated locally; that is the remote service's
// responsibility.
func (a *CallAnalyzer) AnalyzeCall(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	start := time.Now()

	payload, err := a.invoker.Invoke(ctx, "analyze-call", req)
	if err != nil {
		return nil, a.fail(err)
	}
	metrics.AnalysisLatency.Observe(time.Since(start).Seconds())

	var result AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, a.fail(fmt.Errorf("failed to decode analysis result: %w", err))
	}
	if result.Summary == "" {
		return nil, a.fail(ErrMalformedResult)
	}

	metrics.AnalysisRequests.WithLabelValues("success").Inc()
	return &result, nil
}

// fail classifies the error, emits the single notification for it and hands
// the original error back unchanged.
func (a *CallAnalyzer) fail(err error) error {
	c := ClassifyAnalysisError(err)

	metrics.AnalysisRequests.WithLabelValues("failure").Inc()
	metrics.AnalysisFailures.WithLabelValues(string(c.Class)).Inc()

	a.log.Error("call analysis failed", "class", string(c.Class), "error", err)
	a.notifier.Notify(notify.Notification{
		Level:   notify.LevelError,
		Message: NotificationMessage(c),
	})

	return err
}
