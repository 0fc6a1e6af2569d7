package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/pkg/database"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// ResponseRepository handles scenario response data operations in PostgreSQL
type ResponseRepository struct {
	db *database.PostgresDB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *database.PostgresDB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

const responseColumns = `id, session_id, scenario_id, step_number, presented_at, responded_at,
	selected_option, custom_response, confidence_rating, risk_rating, response_time_ms, think_aloud_transcript`

// Create inserts a presented-scenario record. The (session_id,
// step_number) unique constraint backs the one-response-per-step rule.
func (r *ResponseRepository) Create(ctx context.Context, response *domain.ScenarioResponse) error {
	query := `
		INSERT INTO scenario_responses (` + responseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		response.ID,
		response.SessionID,
		response.ScenarioID,
		response.StepNumber,
		response.PresentedAt,
		response.RespondedAt,
		response.SelectedOption,
		response.CustomResponse,
		response.ConfidenceRating,
		response.RiskRating,
		response.ResponseTimeMs,
		response.ThinkAloudTranscript,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.Conflict(fmt.Sprintf("step %d already recorded for session", response.StepNumber))
		}
		return fmt.Errorf("failed to create response: %w", err)
	}

	return nil
}

func scanResponse(row pgx.Row) (*domain.ScenarioResponse, error) {
	var response domain.ScenarioResponse
	err := row.Scan(
		&response.ID,
		&response.SessionID,
		&response.ScenarioID,
		&response.StepNumber,
		&response.PresentedAt,
		&response.RespondedAt,
		&response.SelectedOption,
		&response.CustomResponse,
		&response.ConfidenceRating,
		&response.RiskRating,
		&response.ResponseTimeMs,
		&response.ThinkAloudTranscript,
	)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByID retrieves a response by ID
func (r *ResponseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScenarioResponse, error) {
	query := `SELECT ` + responseColumns + ` FROM scenario_responses WHERE id = $1`

	response, err := scanResponse(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("response")
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return response, nil
}

// ListBySession retrieves all responses for a session in step order.
func (r *ResponseRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ScenarioResponse, error) {
	query := `SELECT ` + responseColumns + ` FROM scenario_responses WHERE session_id = $1 ORDER BY step_number ASC`

	rows, err := r.db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []domain.ScenarioResponse
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, *response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate responses: %w", err)
	}

	return responses, nil
}

// SetAnswer writes the answer fields exactly once. The responded_at IS
// NULL guard makes the write-once rule hold under concurrent submits.
func (r *ResponseRepository) SetAnswer(ctx context.Context, id uuid.UUID, input *domain.SubmitInput, respondedAt time.Time, responseTimeMs int) error {
	query := `
		UPDATE scenario_responses
		SET responded_at = $2,
			selected_option = $3,
			custom_response = $4,
			confidence_rating = $5,
			risk_rating = $6,
			response_time_ms = $7,
			think_aloud_transcript = $8
		WHERE id = $1 AND responded_at IS NULL
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		id,
		respondedAt,
		input.SelectedOption,
		input.CustomResponse,
		input.ConfidenceRating,
		input.RiskRating,
		responseTimeMs,
		input.Transcript,
	)
	if err != nil {
		return fmt.Errorf("failed to submit response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM scenario_responses WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check response: %w", err)
		}
		if !exists {
			return apperrors.NotFound("response")
		}
		return apperrors.InvalidState("response already submitted")
	}

	return nil
}

// SetTranscript stores a transcript produced from staged audio. Unlike
// the answer fields this may be written after submission.
func (r *ResponseRepository) SetTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	query := `UPDATE scenario_responses SET think_aloud_transcript = $2 WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, transcript)
	if err != nil {
		return fmt.Errorf("failed to set transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("response")
	}

	return nil
}
