package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/davidfaure/closecall/internal/models"
)

// ClientStore persists the salesperson's client list.
type ClientStore interface {
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context, limit int) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientController handles the client list CRUD.
type ClientController struct {
	clients  ClientStore
	validate *validator.Validate
	log      *slog.Logger
}

func NewClientController(clients ClientStore, log *slog.Logger) *ClientController {
	return &ClientController{
		clients:  clients,
		validate: validator.New(),
		log:      log,
	}
}

type clientRequest struct {
	Name    string  `json:"name" validate:"required"`
	Company *string `json:"company,omitempty"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// PostClient creates a client.
func (c *ClientController) PostClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	client, err := c.clients.Create(r.Context(), &models.Client{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		c.respondClientError(w, err, "failed to create client")
		return
	}

	respondJSON(w, http.StatusCreated, client)
}

// GetClient returns one client.
func (c *ClientController) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	client, err := c.clients.ByID(r.Context(), id)
	if err != nil {
		c.respondClientError(w, err, "failed to load client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// ListClients returns the client list.
func (c *ClientController) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := c.clients.List(r.Context(), 0)
	if err != nil {
		c.log.Error("failed to list clients", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, clients)
}

// PatchClient updates a client.
func (c *ClientController) PatchClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	client, err := c.clients.Update(r.Context(), &models.Client{
		ID:      id,
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		c.respondClientError(w, err, "failed to update client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// DeleteClient removes a client.
func (c *ClientController) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	if err := c.clients.Delete(r.Context(), id); err != nil {
		c.respondClientError(w, err, "failed to delete client")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// respondClientError maps store errors to HTTP statuses.
func (c *ClientController) respondClientError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrClientNotFound):
		respondError(w, http.StatusNotFound, "client not found")
	case errors.Is(err, models.ErrClientAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidClientEmail):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		c.log.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
