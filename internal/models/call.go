package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CallStatus string

const (
	CallStatusPending   CallStatus = "pending"
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
)

// Call is one recorded sales conversation and, once analyzed, its
// AI-generated summary.
type Call struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        *uuid.UUID `json:"client_id,omitempty"`
	ClientName      string     `json:"client_name"`
	Transcript      string     `json:"transcript"`
	DurationSeconds int        `json:"duration_seconds"`
	Status          CallStatus `json:"status"`

	// AI analysis results
	Summary   *string  `json:"summary,omitempty"`
	KeyPoints []string `json:"key_points,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	ErrorMessage *string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type CallService struct {
	pool *pgxpool.Pool
}

func NewCallService(pool *pgxpool.Pool) *CallService {
	return &CallService{pool: pool}
}

func (s *CallService) Create(ctx context.Context, call *Call) (*Call, error) {
	if call.Transcript == "" {
		return nil, ErrEmptyTranscript
	}

	query := `
		INSERT INTO calls (client_id, client_name, transcript, duration_seconds, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, client_id, client_name, transcript, duration_seconds, status,
		          summary, error_message, created_at, completed_at
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	created := &Call{}
	err := s.pool.QueryRow(ctx, query,
		call.ClientID,
		call.ClientName,
		call.Transcript,
		call.DurationSeconds,
		CallStatusPending,
	).Scan(
		&created.ID,
		&created.ClientID,
		&created.ClientName,
		&created.Transcript,
		&created.DurationSeconds,
		&created.Status,
		&created.Summary,
		&created.ErrorMessage,
		&created.CreatedAt,
		&created.CompletedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	return created, nil
}

// Complete stores the analysis output and marks the call completed.
func (s *CallService) Complete(ctx context.Context, callID uuid.UUID, summary string, keyPoints, tags []string) error {
	keyPointsJSON, err := json.Marshal(keyPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal key points: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE calls
		SET status = $1, summary = $2, key_points = $3, tags = $4, completed_at = NOW()
		WHERE id = $5
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, CallStatusCompleted, summary, keyPointsJSON, tagsJSON, callID)
	if err != nil {
		return fmt.Errorf("failed to complete call: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCallNotFound
	}

	return nil
}

// Fail marks the call as failed with an error message.
func (s *CallService) Fail(ctx context.Context, callID uuid.UUID, errorMsg string) error {
	query := `
		UPDATE calls
		SET status = $1, error_message = $2, completed_at = NOW()
		WHERE id = $3
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, query, CallStatusFailed, errorMsg, callID)
	if err != nil {
		return fmt.Errorf("failed to mark call as failed: %w", err)
	}

	return nil
}

func (s *CallService) ByID(ctx context.Context, id uuid.UUID) (*Call, error) {
	query := `
		SELECT id, client_id, client_name, transcript, duration_seconds, status,
		       summary, key_points, tags, error_message, created_at, completed_at
		FROM calls
		WHERE id = $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	call := &Call{}
	var keyPointsJSON, tagsJSON []byte

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&call.ID,
		&call.ClientID,
		&call.ClientName,
		&call.Transcript,
		&call.DurationSeconds,
		&call.Status,
		&call.Summary,
		&keyPointsJSON,
		&tagsJSON,
		&call.ErrorMessage,
		&call.CreatedAt,
		&call.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCallNotFound
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	// Parse JSON fields
	if len(keyPointsJSON) > 0 {
		if err := json.Unmarshal(keyPointsJSON, &call.KeyPoints); err != nil {
			return nil, fmt.Errorf("failed to parse key points: %w", err)
		}
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &call.Tags); err != nil {
			return nil, fmt.Errorf("failed to parse tags: %w", err)
		}
	}

	return call, nil
}

func (s *CallService) List(ctx context.Context, limit int) ([]*Call, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, client_id, client_name, duration_seconds, status,
		       summary, error_message, created_at, completed_at
		FROM calls
		ORDER BY created_at DESC
		LIMIT $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	return scanCallRows(rows)
}

func (s *CallService) ByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*Call, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, client_id, client_name, duration_seconds, status,
		       summary, error_message, created_at, completed_at
		FROM calls
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls for client: %w", err)
	}
	defer rows.Close()

	return scanCallRows(rows)
}

// CountByStatus returns how many calls sit in each status.
func (s *CallService) CountByStatus(ctx context.Context) (map[CallStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM calls
		GROUP BY status
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}
	defer rows.Close()

	counts := make(map[CallStatus]int)
	for rows.Next() {
		var status CallStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan call count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// scanCallRows reads list rows (transcript and JSON columns omitted).
func scanCallRows(rows pgx.Rows) ([]*Call, error) {
	var calls []*Call
	for rows.Next() {
		call := &Call{}
		err := rows.Scan(
			&call.ID,
			&call.ClientID,
			&call.ClientName,
			&call.DurationSeconds,
			&call.Status,
			&call.Summary,
			&call.ErrorMessage,
			&call.CreatedAt,
			&call.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, call)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calls: %w", err)
	}

	return calls, nil
}

// HELPER FUNCS --------------------------------

func (c *Call) IsPending() bool {
	return c.Status == CallStatusPending
}

func (c *Call) IsCompleted() bool {
	return c.Status == CallStatusCompleted
}

func (c *Call) IsFailed() bool {
	return c.Status == CallStatusFailed
}

// Duration returns the call length.
func (c *Call) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}
