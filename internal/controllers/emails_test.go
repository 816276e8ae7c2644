package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidfaure/closecall/internal/models"
	"github.com/davidfaure/closecall/internal/services"
)

type fakeDispatcher struct {
	sendResult   services.SendResult
	updateOK     bool
	lastSentID   uuid.UUID
	lastStatus   models.EmailStatus
	lastStatusID uuid.UUID
}

func (f *fakeDispatcher) SendEmail(_ context.Context, emailID uuid.UUID) services.SendResult {
	f.lastSentID = emailID
	return f.sendResult
}

func (f *fakeDispatcher) UpdateEmailStatus(_ context.Context, emailID uuid.UUID, status models.EmailStatus) bool {
	f.lastStatusID = emailID
	f.lastStatus = status
	return f.updateOK
}

type fakeEmailReader struct {
	emails map[uuid.UUID]*models.FollowUpEmail
}

func (f *fakeEmailReader) ByID(_ context.Context, id uuid.UUID) (*models.FollowUpEmail, error) {
	email, ok := f.emails[id]
	if !ok {
		return nil, models.ErrEmailNotFound
	}
	return email, nil
}

func (f *fakeEmailReader) List(_ context.Context, _ int) ([]*models.FollowUpEmail, error) {
	var out []*models.FollowUpEmail
	for _, email := range f.emails {
		out = append(out, email)
	}
	return out, nil
}

func (f *fakeEmailReader) ByClient(_ context.Context, clientID uuid.UUID, _ int) ([]*models.FollowUpEmail, error) {
	var out []*models.FollowUpEmail
	for _, email := range f.emails {
		if email.ClientID != nil && *email.ClientID == clientID {
			out = append(out, email)
		}
	}
	return out, nil
}

func emailRouter(dispatcher *fakeDispatcher, reader *fakeEmailReader) http.Handler {
	if reader == nil {
		reader = &fakeEmailReader{emails: map[uuid.UUID]*models.FollowUpEmail{}}
	}
	ctrl := NewEmailController(dispatcher, reader, slog.Default())

	r := chi.NewRouter()
	r.Post("/api/emails/{id}/send", ctrl.PostSend)
	r.Patch("/api/emails/{id}/status", ctrl.PatchStatus)
	r.Get("/api/emails", ctrl.ListEmails)
	r.Get("/api/emails/{id}", ctrl.GetEmail)
	return r
}

func TestPostSend_Success(t *testing.T) {
	req := require.New(t)

	dispatcher := &fakeDispatcher{sendResult: services.SendResult{Success: true, Message: "Email envoyé avec succès"}}
	router := emailRouter(dispatcher, nil)

	emailID := uuid.New()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/emails/"+emailID.String()+"/send", nil))

	req.Equal(http.StatusOK, w.Code)

	var result services.SendResult
	req.NoError(json.Unmarshal(w.Body.Bytes(), &result))
	req.True(result.Success)
	req.Equal("Email envoyé avec succès", result.Message)
	req.Equal(emailID, dispatcher.lastSentID)
}

func TestPostSend_Failure(t *testing.T) {
	req := require.New(t)

	dispatcher := &fakeDispatcher{sendResult: services.SendResult{Success: false, Message: "mail provider unavailable"}}
	router := emailRouter(dispatcher, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/emails/"+uuid.NewString()+"/send", nil))

	// failure still answers with a result body, not an exception-style error
	req.Equal(http.StatusBadGateway, w.Code)

	var result services.SendResult
	req.NoError(json.Unmarshal(w.Body.Bytes(), &result))
	req.False(result.Success)
	req.Equal("mail provider unavailable", result.Message)
}

func TestPostSend_InvalidID(t *testing.T) {
	router := emailRouter(&fakeDispatcher{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/emails/not-a-uuid/send", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchStatus(t *testing.T) {
	req := require.New(t)

	dispatcher := &fakeDispatcher{updateOK: true}
	router := emailRouter(dispatcher, nil)

	emailID := uuid.New()
	body := bytes.NewBufferString(`{"status":"à envoyer"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/emails/"+emailID.String()+"/status", body))

	req.Equal(http.StatusOK, w.Code)
	req.Equal(models.EmailStatusToSend, dispatcher.lastStatus)
	req.Equal(emailID, dispatcher.lastStatusID)
}

func TestPatchStatus_UnknownStatus(t *testing.T) {
	router := emailRouter(&fakeDispatcher{updateOK: true}, nil)

	body := bytes.NewBufferString(`{"status":"archived"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/emails/"+uuid.NewString()+"/status", body))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchStatus_StoreFailure(t *testing.T) {
	req := require.New(t)

	router := emailRouter(&fakeDispatcher{updateOK: false}, nil)

	body := bytes.NewBufferString(`{"status":"envoyé"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/emails/"+uuid.NewString()+"/status", body))

	req.Equal(http.StatusInternalServerError, w.Code)

	var resp struct {
		Success bool `json:"success"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.False(resp.Success)
}

func TestListEmails_FilterByClient(t *testing.T) {
	req := require.New(t)

	clientID := uuid.New()
	otherID := uuid.New()
	reader := &fakeEmailReader{emails: map[uuid.UUID]*models.FollowUpEmail{}}
	for _, cid := range []uuid.UUID{clientID, otherID} {
		id := uuid.New()
		cid := cid
		reader.emails[id] = &models.FollowUpEmail{
			ID:       id,
			ClientID: &cid,
			Subject:  "Suite à notre appel",
			Status:   models.EmailStatusDraft,
		}
	}
	router := emailRouter(&fakeDispatcher{}, reader)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/emails?client_id="+clientID.String(), nil))

	req.Equal(http.StatusOK, w.Code)

	var summaries []map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &summaries))
	req.Len(summaries, 1)
	req.Equal(clientID.String(), summaries[0]["client_id"])
	// list view omits the body
	req.NotContains(summaries[0], "body")
}
