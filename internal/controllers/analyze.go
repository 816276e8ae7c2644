package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/davidfaure/closecall/internal/models"
	"github.com/davidfaure/closecall/internal/services"
)

// Analyzer is the analysis client slice the controller consumes.
type Analyzer interface {
	AnalyzeCall(ctx context.Context, req services.AnalysisRequest) (*services.AnalysisResult, error)
}

// CallStore persists calls and their analysis outcomes.
type CallStore interface {
	Create(ctx context.Context, call *models.Call) (*models.Call, error)
	Complete(ctx context.Context, callID uuid.UUID, summary string, keyPoints, tags []string) error
	Fail(ctx context.Context, callID uuid.UUID, errorMsg string) error
	ByID(ctx context.Context, id uuid.UUID) (*models.Call, error)
	List(ctx context.Context, limit int) ([]*models.Call, error)
	ByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.Call, error)
}

// EmailCreator stores generated follow-up email drafts.
type EmailCreator interface {
	Create(ctx context.Context, email *models.FollowUpEmail) (*models.FollowUpEmail, error)
}

// AnalyzeController handles call analysis requests from the dashboard.
type AnalyzeController struct {
	analyzer Analyzer
	calls    CallStore
	emails   EmailCreator
	validate *validator.Validate
	log      *slog.Logger
}

func NewAnalyzeController(analyzer Analyzer, calls CallStore, emails EmailCreator, log *slog.Logger) *AnalyzeController {
	return &AnalyzeController{
		analyzer: analyzer,
		calls:    calls,
		emails:   emails,
		validate: validator.New(),
		log:      log,
	}
}

// analyzeCallRequest is the dashboard's analysis payload.
type analyzeCallRequest struct {
	Transcript string     `json:"transcript" validate:"required"`
	ClientName string     `json:"client_name" validate:"required"`
	ClientID   *uuid.UUID `json:"client_id,omitempty"`
	Duration   int        `json:"duration" validate:"gte=0"`
	Context    string     `json:"context,omitempty"`
}

type analyzeCallResponse struct {
	Call   *models.Call             `json:"call"`
	Result *services.AnalysisResult `json:"result"`
	Email  *models.FollowUpEmail    `json:"email,omitempty"`
}

// PostAnalyze records the call, runs the AI analysis and saves the generated
// follow-up email draft.
func (c *AnalyzeController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeCallRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()

	call, err := c.calls.Create(ctx, &models.Call{
		ClientID:        req.ClientID,
		ClientName:      req.ClientName,
		Transcript:      req.Transcript,
		DurationSeconds: req.Duration,
	})
	if err != nil {
		c.log.Error("failed to create call record", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to record call")
		return
	}

	result, err := c.analyzer.AnalyzeCall(ctx, services.AnalysisRequest{
		Transcript: req.Transcript,
		ClientName: req.ClientName,
		Duration:   req.Duration,
		Context:    req.Context,
	})
	if err != nil {
		// The analyzer already notified; keep the stored call in step and
		// surface the same classified message to the dashboard.
		classification := services.ClassifyAnalysisError(err)
		if failErr := c.calls.Fail(ctx, call.ID, err.Error()); failErr != nil {
			c.log.Error("failed to mark call as failed", "call_id", call.ID, "error", failErr)
		}
		respondError(w, statusForClass(classification.Class), services.NotificationMessage(classification))
		return
	}

	if err := c.calls.Complete(ctx, call.ID, result.Summary, result.KeyPoints, result.Tags); err != nil {
		c.log.Error("failed to store analysis result", "call_id", call.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store analysis result")
		return
	}

	// The generated follow-up starts life as a draft; sending is a separate
	// user action.
	email, err := c.emails.Create(ctx, &models.FollowUpEmail{
		CallID:   &call.ID,
		ClientID: req.ClientID,
		Subject:  result.FollowUpEmail.Subject,
		Body:     result.FollowUpEmail.Body,
		Status:   models.EmailStatusDraft,
	})
	if err != nil {
		c.log.Error("failed to save follow-up email draft", "call_id", call.ID, "error", err)
	}

	stored, err := c.calls.ByID(ctx, call.ID)
	if err != nil {
		stored = call
	}

	respondJSON(w, http.StatusOK, analyzeCallResponse{
		Call:   stored,
		Result: result,
		Email:  email,
	})
}

// GetCall returns one call with its analysis.
func (c *AnalyzeController) GetCall(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid call ID")
		return
	}

	call, err := c.calls.ByID(r.Context(), id)
	if err != nil {
		if err == models.ErrCallNotFound {
			respondError(w, http.StatusNotFound, "call not found")
			return
		}
		c.log.Error("failed to load call", "call_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load call")
		return
	}

	respondJSON(w, http.StatusOK, call)
}

// ListCalls returns recent calls, optionally filtered by client.
func (c *AnalyzeController) ListCalls(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if clientIDParam := r.URL.Query().Get("client_id"); clientIDParam != "" {
		clientID, err := uuid.Parse(clientIDParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid client ID")
			return
		}
		calls, err := c.calls.ByClient(ctx, clientID, 0)
		if err != nil {
			c.log.Error("failed to list calls for client", "client_id", clientID, "error", err)
			respondError(w, http.StatusInternalServerError, "failed to list calls")
			return
		}
		respondJSON(w, http.StatusOK, calls)
		return
	}

	calls, err := c.calls.List(ctx, 0)
	if err != nil {
		c.log.Error("failed to list calls", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list calls")
		return
	}

	respondJSON(w, http.StatusOK, calls)
}

// statusForClass maps a classified analysis failure to an HTTP status.
// All of them are upstream conditions from the dashboard's point of view.
func statusForClass(class services.ErrorClass) int {
	switch class {
	case services.ClassQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
