package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Loose email shape check, the real validation is the mail provider's problem.
// MustCompile for fail fast impl
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Client is a prospect or customer a salesperson tracks calls against.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   *string   `json:"company,omitempty"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ClientService struct {
	pool *pgxpool.Pool
}

// constructor ~
func NewClientService(pool *pgxpool.Pool) *ClientService {
	return &ClientService{pool: pool}
}

// ValidateClientEmail normalizes and checks the email format.
func ValidateClientEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidClientEmail
	}
	return email, nil
}

func (s *ClientService) Create(ctx context.Context, client *Client) (*Client, error) {
	email, err := ValidateClientEmail(client.Email)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO clients (name, company, email, phone, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, company, email, phone, notes, created_at, updated_at
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	created := &Client{}
	err = s.pool.QueryRow(ctx, query,
		strings.TrimSpace(client.Name),
		client.Company,
		email,
		client.Phone,
		client.Notes,
	).Scan(
		&created.ID,
		&created.Name,
		&created.Company,
		&created.Email,
		&created.Phone,
		&created.Notes,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrClientAlreadyExists
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return created, nil
}

func (s *ClientService) ByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `
		SELECT id, name, company, email, phone, notes, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	client := &Client{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Company,
		&client.Email,
		&client.Phone,
		&client.Notes,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

func (s *ClientService) List(ctx context.Context, limit int) ([]*Client, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, name, company, email, phone, notes, created_at, updated_at
		FROM clients
		ORDER BY name ASC
		LIMIT $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		client := &Client{}
		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Company,
			&client.Email,
			&client.Phone,
			&client.Notes,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

func (s *ClientService) Update(ctx context.Context, client *Client) (*Client, error) {
	email, err := ValidateClientEmail(client.Email)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE clients
		SET name = $1, company = $2, email = $3, phone = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, name, company, email, phone, notes, created_at, updated_at
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	updated := &Client{}
	err = s.pool.QueryRow(ctx, query,
		strings.TrimSpace(client.Name),
		client.Company,
		email,
		client.Phone,
		client.Notes,
		client.ID,
	).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Company,
		&updated.Email,
		&updated.Phone,
		&updated.Notes,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrClientAlreadyExists
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM clients WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}
