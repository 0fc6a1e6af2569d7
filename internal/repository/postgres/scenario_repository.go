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

// ScenarioRepository handles scenario data operations in PostgreSQL
type ScenarioRepository struct {
	db *database.PostgresDB
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *database.PostgresDB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

const scenarioColumns = `id, title, category, description, scenario_context, decision_point, options, metadata, created_at, is_active`

// Create creates a new scenario
func (r *ScenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	query := `
		INSERT INTO scenarios (` + scenarioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	options, err := json.Marshal(scenario.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}
	metadata, err := marshalJSONMap(scenario.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		scenario.ID,
		scenario.Title,
		scenario.Category,
		scenario.Description,
		scenario.Context,
		scenario.DecisionPoint,
		options,
		metadata,
		scenario.CreatedAt,
		scenario.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}

	return nil
}

func scanScenario(row pgx.Row) (*domain.Scenario, error) {
	var scenario domain.Scenario
	var options, metadata []byte
	err := row.Scan(
		&scenario.ID,
		&scenario.Title,
		&scenario.Category,
		&scenario.Description,
		&scenario.Context,
		&scenario.DecisionPoint,
		&options,
		&metadata,
		&scenario.CreatedAt,
		&scenario.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(options, &scenario.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	if scenario.Metadata, err = unmarshalJSONMap(metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &scenario, nil
}

// GetByID retrieves an active scenario by ID
func (r *ScenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = $1 AND is_active = true`

	scenario, err := scanScenario(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("scenario")
		}
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return scenario, nil
}

// GetByIDs retrieves scenarios for a set of IDs regardless of active
// flag, keyed by ID. Missing IDs are simply absent from the map.
func (r *ScenarioRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Scenario, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Scenario{}, nil
	}

	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make(map[uuid.UUID]*domain.Scenario, len(ids))
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios[scenario.ID] = scenario
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}

	return scenarios, nil
}

// List retrieves active scenarios with filtering
func (r *ScenarioRepository) List(ctx context.Context, filter *domain.ScenarioFilter, limit, offset int) (*domain.ScenarioList, error) {
	baseQuery := `FROM scenarios WHERE is_active = true`
	args := []interface{}{}
	argIndex := 1

	if filter.Category != nil {
		baseQuery += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, *filter.Category)
		argIndex++
	}

	countQuery := "SELECT COUNT(*) " + baseQuery
	var totalCount int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count scenarios: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, scenarioColumns, baseQuery, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []domain.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, *scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}

	return &domain.ScenarioList{
		Scenarios:  scenarios,
		TotalCount: totalCount,
	}, nil
}

// Update applies partial updates to a scenario
func (r *ScenarioRepository) Update(ctx context.Context, id uuid.UUID, input *domain.ScenarioUpdateInput) error {
	sets := []string{}
	args := []interface{}{id}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if input.Title != nil {
		addSet("title", *input.Title)
	}
	if input.Category != nil {
		addSet("category", *input.Category)
	}
	if input.Description != nil {
		addSet("description", *input.Description)
	}
	if input.Context != nil {
		addSet("scenario_context", *input.Context)
	}
	if input.DecisionPoint != nil {
		addSet("decision_point", *input.DecisionPoint)
	}
	if input.Options != nil {
		options, err := json.Marshal(input.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal options: %w", err)
		}
		addSet("options", options)
	}
	if input.Metadata != nil {
		metadata, err := json.Marshal(input.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		addSet("metadata", metadata)
	}

	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE scenarios SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE id = $1 AND is_active = true"

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("scenario")
	}

	return nil
}

// SoftDelete deactivates a scenario without removing its row, so that
// historical responses keep a resolvable reference.
func (r *ScenarioRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE scenarios SET is_active = false WHERE id = $1 AND is_active = true`

	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("scenario")
	}

	return nil
}
