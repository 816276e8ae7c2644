package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davidfaure/closecall/internal/metrics"
	"github.com/davidfaure/closecall/internal/models"
)

// EmailStore is the slice of the persistence layer the dispatcher needs.
type EmailStore interface {
	MarkSent(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.EmailStatus) error
}

// SendResult is what callers poll instead of catching errors.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// sendEmailRequest is the body sent to the send-email function.
type sendEmailRequest struct {
	EmailID string `json:"emailId"`
}

// EmailDispatcher triggers sending of generated follow-up emails and keeps
// the persisted record's status in step.
//
// Unlike the analysis client, this component never propagates an error:
// every failure is absorbed into a SendResult (or a bare false). The
// asymmetry is deliberate, callers depend on it.
type EmailDispatcher struct {
	invoker Invoker
	store   EmailStore
	log     *slog.Logger
}

func NewEmailDispatcher(invoker Invoker, store EmailStore, log *slog.Logger) *EmailDispatcher {
	return &EmailDispatcher{
		invoker: invoker,
		store:   store,
		log:     log,
	}
}

// SendEmail invokes the send-email function for a stored follow-up email.
// On remote success the record is marked sent and its send date stamped.
func (d *EmailDispatcher) SendEmail(ctx context.Context, emailID uuid.UUID) SendResult {
	_, err := d.invoker.Invoke(ctx, "send-email", sendEmailRequest{EmailID: emailID.String()})
	if err != nil {
		d.log.Error("failed to send email", "email_id", emailID, "error", err)
		metrics.EmailSends.WithLabelValues("failure").Inc()
		return SendResult{Success: false, Message: err.Error()}
	}

	if err := d.store.MarkSent(ctx, emailID); err != nil {
		d.log.Error("email sent but status update failed", "email_id", emailID, "error", err)
		metrics.EmailSends.WithLabelValues("failure").Inc()
		return SendResult{Success: false, Message: err.Error()}
	}

	metrics.EmailSends.WithLabelValues("success").Inc()
	return SendResult{Success: true, Message: msgEmailSent}
}

// UpdateEmailStatus sets the persisted status. Failures are logged only;
// the boolean is the whole contract.
func (d *EmailDispatcher) UpdateEmailStatus(ctx context.Context, emailID uuid.UUID, status models.EmailStatus) bool {
	if err := d.store.UpdateStatus(ctx, emailID, status); err != nil {
		d.log.Error("failed to update email status", "email_id", emailID, "status", string(status), "error", err)
		return false
	}
	return true
}
