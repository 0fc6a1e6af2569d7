package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/pkg/database"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// SessionRepository handles session data operations in PostgreSQL
type SessionRepository struct {
	db *database.PostgresDB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.PostgresDB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, experiment_id, participant_id, operator_id, start_time, end_time, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	metadata, err := marshalJSONMap(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		session.ID,
		session.ExperimentID,
		session.ParticipantID,
		session.OperatorID,
		session.StartTime,
		session.EndTime,
		session.Status,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, experiment_id, participant_id, operator_id, start_time, end_time, status, metadata
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	var metadata []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.ExperimentID,
		&session.ParticipantID,
		&session.OperatorID,
		&session.StartTime,
		&session.EndTime,
		&session.Status,
		&metadata,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("session")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Metadata, err = unmarshalJSONMap(metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &session, nil
}

// UpdateStatus transitions a session out of the active state. The
// WHERE clause enforces the transition at the database level so that
// two racing finalizations cannot both succeed.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, endTime time.Time) error {
	query := `
		UPDATE sessions
		SET status = $2, end_time = $3
		WHERE id = $1 AND status = 'active'
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, endTime)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing session from an already-finalized one.
		var current domain.SessionStatus
		err := r.db.Pool.QueryRow(ctx, `SELECT status FROM sessions WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("session")
		}
		if err != nil {
			return fmt.Errorf("failed to check session status: %w", err)
		}
		return apperrors.InvalidState(fmt.Sprintf("session is %s, not active", current))
	}

	return nil
}

// List retrieves sessions with filtering
func (r *SessionRepository) List(ctx context.Context, filter *domain.SessionFilter, limit, offset int) (*domain.SessionList, error) {
	baseQuery := `FROM sessions WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.ExperimentID != nil {
		baseQuery += fmt.Sprintf(" AND experiment_id = $%d", argIndex)
		args = append(args, *filter.ExperimentID)
		argIndex++
	}
	if filter.ParticipantID != nil {
		baseQuery += fmt.Sprintf(" AND participant_id = $%d", argIndex)
		args = append(args, *filter.ParticipantID)
		argIndex++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	countQuery := "SELECT COUNT(*) " + baseQuery
	var totalCount int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, experiment_id, participant_id, operator_id, start_time, end_time, status, metadata
		%s
		ORDER BY start_time DESC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		var metadata []byte
		if err := rows.Scan(
			&session.ID,
			&session.ExperimentID,
			&session.ParticipantID,
			&session.OperatorID,
			&session.StartTime,
			&session.EndTime,
			&session.Status,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if session.Metadata, err = unmarshalJSONMap(metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return &domain.SessionList{
		Sessions:   sessions,
		TotalCount: totalCount,
	}, nil
}
