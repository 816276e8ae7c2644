package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/davidfaure/closecall/internal/models"
	"github.com/davidfaure/closecall/internal/services"
)

// Dispatcher is the email dispatch client slice the controller consumes.
type Dispatcher interface {
	SendEmail(ctx context.Context, emailID uuid.UUID) services.SendResult
	UpdateEmailStatus(ctx context.Context, emailID uuid.UUID, status models.EmailStatus) bool
}

// EmailReader lists stored follow-up emails.
type EmailReader interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.FollowUpEmail, error)
	List(ctx context.Context, limit int) ([]*models.FollowUpEmail, error)
	ByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.FollowUpEmail, error)
}

// EmailController exposes follow-up email actions to the dashboard.
type EmailController struct {
	dispatcher Dispatcher
	emails     EmailReader
	log        *slog.Logger
}

func NewEmailController(dispatcher Dispatcher, emails EmailReader, log *slog.Logger) *EmailController {
	return &EmailController{
		dispatcher: dispatcher,
		emails:     emails,
		log:        log,
	}
}

// PostSend triggers sending of a stored follow-up email. The response body
// always carries {success, message}; callers poll the flag, there is no
// error channel here.
func (c *EmailController) PostSend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid email ID")
		return
	}

	result := c.dispatcher.SendEmail(r.Context(), id)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, result)
}

type updateStatusRequest struct {
	Status models.EmailStatus `json:"status"`
}

type updateStatusResponse struct {
	Success bool `json:"success"`
}

// PatchStatus updates the persisted status of a follow-up email.
func (c *EmailController) PatchStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid email ID")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidEmailStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "invalid email status")
		return
	}

	ok := c.dispatcher.UpdateEmailStatus(r.Context(), id, req.Status)

	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, updateStatusResponse{Success: ok})
}

// GetEmail returns one stored follow-up email.
func (c *EmailController) GetEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid email ID")
		return
	}

	email, err := c.emails.ByID(r.Context(), id)
	if err != nil {
		if err == models.ErrEmailNotFound {
			respondError(w, http.StatusNotFound, "email not found")
			return
		}
		c.log.Error("failed to load email", "email_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load email")
		return
	}

	respondJSON(w, http.StatusOK, email)
}

// emailSummary is the list view of a follow-up email (body omitted).
type emailSummary struct {
	ID       uuid.UUID          `json:"id"`
	CallID   *uuid.UUID         `json:"call_id,omitempty"`
	ClientID *uuid.UUID         `json:"client_id,omitempty"`
	Subject  string             `json:"subject"`
	Status   models.EmailStatus `json:"status"`
	SendDate *time.Time         `json:"send_date,omitempty"`
}

// ListEmails returns recent follow-up emails, optionally filtered by client.
func (c *EmailController) ListEmails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		emails []*models.FollowUpEmail
		err    error
	)
	if clientIDParam := r.URL.Query().Get("client_id"); clientIDParam != "" {
		clientID, parseErr := uuid.Parse(clientIDParam)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid client ID")
			return
		}
		emails, err = c.emails.ByClient(ctx, clientID, 0)
	} else {
		emails, err = c.emails.List(ctx, 0)
	}
	if err != nil {
		c.log.Error("failed to list emails", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list emails")
		return
	}

	summaries := lo.Map(emails, func(e *models.FollowUpEmail, _ int) emailSummary {
		return emailSummary{
			ID:       e.ID,
			CallID:   e.CallID,
			ClientID: e.ClientID,
			Subject:  e.Subject,
			Status:   e.Status,
			SendDate: e.SendDate,
		}
	})

	respondJSON(w, http.StatusOK, summaries)
}
