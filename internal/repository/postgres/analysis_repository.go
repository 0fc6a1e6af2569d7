package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/pkg/database"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// AnalysisRepository handles thematic analysis data operations in PostgreSQL
type AnalysisRepository struct {
	db *database.PostgresDB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *database.PostgresDB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, response_id, themes, codes, key_concepts, cognitive_strategies,
	uncertainty_expressions, risk_factors, sentiment_score, sentiment_magnitude, analyzed_by, created_at`

// Create inserts a new analysis row. Repeated analysis of the same
// response appends rows rather than overwriting.
func (r *AnalysisRepository) Create(ctx context.Context, analysis *domain.ThematicAnalysis) error {
	query := `
		INSERT INTO thematic_analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	themes, err := json.Marshal(analysis.Themes)
	if err != nil {
		return fmt.Errorf("failed to marshal themes: %w", err)
	}
	codes, err := marshalStringList(analysis.Codes)
	if err != nil {
		return fmt.Errorf("failed to marshal codes: %w", err)
	}
	concepts, err := marshalStringList(analysis.KeyConcepts)
	if err != nil {
		return fmt.Errorf("failed to marshal key concepts: %w", err)
	}
	strategies, err := marshalStringList(analysis.CognitiveStrategies)
	if err != nil {
		return fmt.Errorf("failed to marshal cognitive strategies: %w", err)
	}
	uncertainties, err := marshalStringList(analysis.UncertaintyExpressions)
	if err != nil {
		return fmt.Errorf("failed to marshal uncertainty expressions: %w", err)
	}
	risks, err := marshalStringList(analysis.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		analysis.ID,
		analysis.ResponseID,
		themes,
		codes,
		concepts,
		strategies,
		uncertainties,
		risks,
		analysis.Sentiment.Score,
		analysis.Sentiment.Magnitude,
		analysis.AnalyzedBy,
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	return nil
}

func scanAnalysis(row pgx.Row) (*domain.ThematicAnalysis, error) {
	var analysis domain.ThematicAnalysis
	var themes, codes, concepts, strategies, uncertainties, risks []byte
	err := row.Scan(
		&analysis.ID,
		&analysis.ResponseID,
		&themes,
		&codes,
		&concepts,
		&strategies,
		&uncertainties,
		&risks,
		&analysis.Sentiment.Score,
		&analysis.Sentiment.Magnitude,
		&analysis.AnalyzedBy,
		&analysis.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(themes, &analysis.Themes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal themes: %w", err)
	}
	for _, field := range []struct {
		data []byte
		dest *[]string
	}{
		{codes, &analysis.Codes},
		{concepts, &analysis.KeyConcepts},
		{strategies, &analysis.CognitiveStrategies},
		{uncertainties, &analysis.UncertaintyExpressions},
		{risks, &analysis.RiskFactors},
	} {
		if err := json.Unmarshal(field.data, field.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis field: %w", err)
		}
	}

	return &analysis, nil
}

// LatestByResponse retrieves the most recent analysis for a response.
func (r *AnalysisRepository) LatestByResponse(ctx context.Context, responseID uuid.UUID) (*domain.ThematicAnalysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM thematic_analyses
		WHERE response_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	analysis, err := scanAnalysis(r.db.Pool.QueryRow(ctx, query, responseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("analysis")
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return analysis, nil
}

// ListByResponse retrieves all analysis rows for a response, newest first.
func (r *AnalysisRepository) ListByResponse(ctx context.Context, responseID uuid.UUID) ([]domain.ThematicAnalysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM thematic_analyses
		WHERE response_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []domain.ThematicAnalysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, *analysis)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return analyses, nil
}

// marshalStringList marshals a possibly-nil string list to JSON,
// defaulting to [].
func marshalStringList(list []string) ([]byte, error) {
	if list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(list)
}
