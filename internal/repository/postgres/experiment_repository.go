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

// ExperimentRepository handles experiment data operations in PostgreSQL
type ExperimentRepository struct {
	db *database.PostgresDB
}

// NewExperimentRepository creates a new experiment repository
func NewExperimentRepository(db *database.PostgresDB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

// Create creates a new experiment
func (r *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	query := `
		INSERT INTO experiments (id, name, description, scenario_sequence, config, created_by, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	sequence, err := json.Marshal(experiment.ScenarioSequence)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario sequence: %w", err)
	}
	cfg, err := marshalJSONMap(experiment.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		experiment.ID,
		experiment.Name,
		experiment.Description,
		sequence,
		cfg,
		experiment.CreatedBy,
		experiment.CreatedAt,
		experiment.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}

	return nil
}

// GetByID retrieves an experiment by ID
func (r *ExperimentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Experiment, error) {
	query := `
		SELECT id, name, description, scenario_sequence, config, created_by, created_at, is_active
		FROM experiments
		WHERE id = $1
	`

	var experiment domain.Experiment
	var sequence, cfg []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&experiment.ID,
		&experiment.Name,
		&experiment.Description,
		&sequence,
		&cfg,
		&experiment.CreatedBy,
		&experiment.CreatedAt,
		&experiment.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("experiment")
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	if err := json.Unmarshal(sequence, &experiment.ScenarioSequence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario sequence: %w", err)
	}
	if experiment.Config, err = unmarshalJSONMap(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &experiment, nil
}

// SetActive updates the active flag of an experiment
func (r *ExperimentRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE experiments SET is_active = $2 WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("experiment")
	}

	return nil
}

// List retrieves experiments with filtering
func (r *ExperimentRepository) List(ctx context.Context, filter *domain.ExperimentFilter, limit, offset int) (*domain.ExperimentList, error) {
	baseQuery := `FROM experiments WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.IsActive != nil {
		baseQuery += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *filter.IsActive)
		argIndex++
	}
	if filter.Search != "" {
		baseQuery += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	// Get count
	countQuery := "SELECT COUNT(*) " + baseQuery
	var totalCount int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count experiments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, scenario_sequence, config, created_by, created_at, is_active
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []domain.Experiment
	for rows.Next() {
		var experiment domain.Experiment
		var sequence, cfg []byte
		if err := rows.Scan(
			&experiment.ID,
			&experiment.Name,
			&experiment.Description,
			&sequence,
			&cfg,
			&experiment.CreatedBy,
			&experiment.CreatedAt,
			&experiment.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		if err := json.Unmarshal(sequence, &experiment.ScenarioSequence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scenario sequence: %w", err)
		}
		if experiment.Config, err = unmarshalJSONMap(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		experiments = append(experiments, experiment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate experiments: %w", err)
	}

	return &domain.ExperimentList{
		Experiments: experiments,
		TotalCount:  totalCount,
	}, nil
}

// marshalJSONMap marshals a possibly-nil map to JSON, defaulting to {}.
func marshalJSONMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// unmarshalJSONMap unmarshals JSON into a map, treating empty as nil.
func unmarshalJSONMap(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
