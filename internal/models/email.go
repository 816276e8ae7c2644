package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailStatus values match what the dashboard displays, so they are stored
// in French as-is.
type EmailStatus string

const (
	EmailStatusDraft  EmailStatus = "brouillon"
	EmailStatusToSend EmailStatus = "à envoyer"
	EmailStatusSent   EmailStatus = "envoyé"
)

// ValidEmailStatus reports whether status is part of the enumeration.
func ValidEmailStatus(status EmailStatus) bool {
	switch status {
	case EmailStatusDraft, EmailStatusToSend, EmailStatusSent:
		return true
	}
	return false
}

// FollowUpEmail is a generated email draft tied to an analyzed call.
// send_date is only ever set when a send succeeds.
type FollowUpEmail struct {
	ID        uuid.UUID   `json:"id"`
	CallID    *uuid.UUID  `json:"call_id,omitempty"`
	ClientID  *uuid.UUID  `json:"client_id,omitempty"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Status    EmailStatus `json:"status"`
	SendDate  *time.Time  `json:"send_date,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type EmailService struct {
	pool *pgxpool.Pool
}

func NewEmailService(pool *pgxpool.Pool) *EmailService {
	return &EmailService{pool: pool}
}

func (s *EmailService) Create(ctx context.Context, email *FollowUpEmail) (*FollowUpEmail, error) {
	status := email.Status
	if status == "" {
		status = EmailStatusDraft
	}
	if !ValidEmailStatus(status) {
		return nil, ErrInvalidEmailStatus
	}

	query := `
		INSERT INTO followup_emails (call_id, client_id, subject, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, call_id, client_id, subject, body, status, send_date, created_at, updated_at
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	created := &FollowUpEmail{}
	err := s.pool.QueryRow(ctx, query,
		email.CallID,
		email.ClientID,
		email.Subject,
		email.Body,
		status,
	).Scan(
		&created.ID,
		&created.CallID,
		&created.ClientID,
		&created.Subject,
		&created.Body,
		&created.Status,
		&created.SendDate,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create follow-up email: %w", err)
	}

	return created, nil
}

func (s *EmailService) ByID(ctx context.Context, id uuid.UUID) (*FollowUpEmail, error) {
	query := `
		SELECT id, call_id, client_id, subject, body, status, send_date, created_at, updated_at
		FROM followup_emails
		WHERE id = $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	email := &FollowUpEmail{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&email.ID,
		&email.CallID,
		&email.ClientID,
		&email.Subject,
		&email.Body,
		&email.Status,
		&email.SendDate,
		&email.CreatedAt,
		&email.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmailNotFound
		}
		return nil, fmt.Errorf("failed to get follow-up email: %w", err)
	}

	return email, nil
}

// UpdateStatus sets the record status to one of the fixed enumeration values.
func (s *EmailService) UpdateStatus(ctx context.Context, id uuid.UUID, status EmailStatus) error {
	if !ValidEmailStatus(status) {
		return ErrInvalidEmailStatus
	}

	query := `
		UPDATE followup_emails
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update email status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEmailNotFound
	}

	return nil
}

// MarkSent flips the record to the sent state and stamps the send date.
func (s *EmailService) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE followup_emails
		SET status = $1, send_date = NOW(), updated_at = NOW()
		WHERE id = $2
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, EmailStatusSent, id)
	if err != nil {
		return fmt.Errorf("failed to mark email as sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEmailNotFound
	}

	return nil
}

func (s *EmailService) List(ctx context.Context, limit int) ([]*FollowUpEmail, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, call_id, client_id, subject, body, status, send_date, created_at, updated_at
		FROM followup_emails
		ORDER BY created_at DESC
		LIMIT $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-up emails: %w", err)
	}
	defer rows.Close()

	return scanEmailRows(rows)
}

func (s *EmailService) ByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*FollowUpEmail, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, call_id, client_id, subject, body, status, send_date, created_at, updated_at
		FROM followup_emails
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-up emails for client: %w", err)
	}
	defer rows.Close()

	return scanEmailRows(rows)
}

// CountByStatus returns how many follow-up emails sit in each status.
func (s *EmailService) CountByStatus(ctx context.Context) (map[EmailStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM followup_emails
		GROUP BY status
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-up emails: %w", err)
	}
	defer rows.Close()

	counts := make(map[EmailStatus]int)
	for rows.Next() {
		var status EmailStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan email count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanEmailRows(rows pgx.Rows) ([]*FollowUpEmail, error) {
	var emails []*FollowUpEmail
	for rows.Next() {
		email := &FollowUpEmail{}
		err := rows.Scan(
			&email.ID,
			&email.CallID,
			&email.ClientID,
			&email.Subject,
			&email.Body,
			&email.Status,
			&email.SendDate,
			&email.CreatedAt,
			&email.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan follow-up email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follow-up emails: %w", err)
	}

	return emails, nil
}

// IsSent reports whether the email already went out.
func (e *FollowUpEmail) IsSent() bool {
	return e.Status == EmailStatusSent
}
